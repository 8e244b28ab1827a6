package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Web3vDev/SolanaRacer/config"
	apperrors "github.com/Web3vDev/SolanaRacer/errors"
	"github.com/Web3vDev/SolanaRacer/events/kafka"
	"github.com/Web3vDev/SolanaRacer/httpclient"
	"github.com/Web3vDev/SolanaRacer/pkg/providers"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
)

const sourceService = "sol-racer"

// RaceDetails represents race audit details for mapstructure decoding
type RaceDetails struct {
	Username      string `mapstructure:"username" json:"username"`
	Direction     string `mapstructure:"direction" json:"direction"`
	Correct       bool   `mapstructure:"correct" json:"correct"`
	PointsAwarded int    `mapstructure:"pointsAwarded" json:"pointsAwarded"`
	Streak        int    `mapstructure:"streak" json:"streak"`
	Boosted       bool   `mapstructure:"boosted" json:"boosted"`
	FinalPrice    string `mapstructure:"finalPrice" json:"finalPrice"`
}

// PurchaseDetails represents purchase audit details for mapstructure decoding
type PurchaseDetails struct {
	Username string `mapstructure:"username" json:"username"`
	ItemType string `mapstructure:"itemType" json:"itemType"`
	ItemID   int    `mapstructure:"itemId" json:"itemId"`
	Cost     int    `mapstructure:"cost" json:"cost"`
}

// UnlockDetails represents unlock audit details for mapstructure decoding
type UnlockDetails struct {
	Username   string `mapstructure:"username" json:"username"`
	UnlockKind string `mapstructure:"unlockKind" json:"unlockKind"`
	UnlockID   int    `mapstructure:"unlockId" json:"unlockId"`
	UnlockName string `mapstructure:"unlockName" json:"unlockName"`
}

// AuditEvent is the envelope published to the audit topic
type AuditEvent struct {
	Timestamp     time.Time   `json:"timestamp"`
	UserID        string      `json:"user_id"`
	SourceService string      `json:"source_service"`
	Action        string      `json:"action"`
	Details       interface{} `json:"details"`
	Result        string      `json:"result"`
	TraceID       string      `json:"trace_id,omitempty"`
}

// AuditProvider implements providers.AuditLogger using Kafka for writes
// and the audit query service over HTTP for history reads
type AuditProvider struct {
	client        *httpclient.Client
	kafkaProducer *kafka.Producer
	auditTopic    string
	logger        zerolog.Logger
}

// NewAuditProvider creates a new audit provider
func NewAuditProvider(cfg *config.Config, kafkaProducer *kafka.Producer, logger zerolog.Logger) *AuditProvider {
	svc := cfg.ExternalServices.AuditService
	client := httpclient.New(httpclient.Config{
		BaseURL: svc.BaseURL,
		Timeout: svc.Timeout,
		Logger:  logger,
	})
	if svc.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+svc.APIKey)
	}

	auditTopic := "race.audit"
	if cfg.Kafka.Topics != nil {
		if t, ok := cfg.Kafka.Topics["audit"]; ok {
			auditTopic = t
		}
	}

	return &AuditProvider{
		client:        client,
		kafkaProducer: kafkaProducer,
		auditTopic:    auditTopic,
		logger:        logger.With().Str("component", "audit_provider").Logger(),
	}
}

// LogRace publishes a settled round to the audit topic
func (p *AuditProvider) LogRace(ctx context.Context, log *providers.RaceLog) error {
	return p.publish(ctx, log.FID, "race", RaceDetails{
		Username:      log.Username,
		Direction:     log.Direction,
		Correct:       log.Correct,
		PointsAwarded: log.PointsAwarded,
		Streak:        log.Streak,
		Boosted:       log.Boosted,
		FinalPrice:    log.FinalPrice,
	}, log.Timestamp)
}

// LogPurchase publishes a shop purchase to the audit topic
func (p *AuditProvider) LogPurchase(ctx context.Context, log *providers.PurchaseLog) error {
	return p.publish(ctx, log.FID, "purchase", PurchaseDetails{
		Username: log.Username,
		ItemType: log.ItemType,
		ItemID:   log.ItemID,
		Cost:     log.Cost,
	}, log.Timestamp)
}

// LogUnlock publishes a badge, frame, or level unlock to the audit topic
func (p *AuditProvider) LogUnlock(ctx context.Context, log *providers.UnlockLog) error {
	return p.publish(ctx, log.FID, "unlock", UnlockDetails{
		Username:   log.Username,
		UnlockKind: log.UnlockKind,
		UnlockID:   log.UnlockID,
		UnlockName: log.UnlockName,
	}, log.Timestamp)
}

func (p *AuditProvider) publish(_ context.Context, fid int64, action string, details interface{}, at time.Time) error {
	if p.kafkaProducer == nil {
		p.logger.Warn().Str("action", action).Msg("Kafka producer not configured, skipping audit log")
		return nil
	}
	if at.IsZero() {
		at = time.Now()
	}

	traceID := uuid.New().String()
	event := AuditEvent{
		Timestamp:     at,
		UserID:        strconv.FormatInt(fid, 10),
		SourceService: sourceService,
		Action:        action,
		Details:       details,
		Result:        "success",
		TraceID:       traceID,
	}

	if err := p.kafkaProducer.SendMessage(p.auditTopic, traceID, event); err != nil {
		p.logger.Error().Err(err).Str("action", action).Msg("Failed to send audit event to Kafka")
		return apperrors.Wrap(err, apperrors.ErrKafkaError, "failed to log "+action)
	}
	return nil
}

// LogEntry represents an audit log entry from the audit service
type LogEntry struct {
	ID            string                 `json:"id"`
	Timestamp     time.Time              `json:"timestamp"`
	UserID        string                 `json:"user_id"`
	SourceService string                 `json:"source_service"`
	Action        string                 `json:"action"`
	Details       map[string]interface{} `json:"details"`
	Result        string                 `json:"result"`
	TraceID       string                 `json:"trace_id,omitempty"`
}

// auditSearchResponse is the audit service search payload
type auditSearchResponse struct {
	Logs  []LogEntry `json:"logs"`
	Total int        `json:"total"`
}

// GetHistory queries the audit service for one player's past events
func (p *AuditProvider) GetHistory(ctx context.Context, query *providers.HistoryQuery) (*providers.HistoryResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	path := "/logs/search" + httpclient.EncodeQuery(map[string]string{
		"source_service": sourceService,
		"user_id":        strconv.FormatInt(query.FID, 10),
		"action":         query.Kind,
		"offset":         strconv.Itoa(query.Page * limit),
		"limit":          strconv.Itoa(limit),
	})

	var result auditSearchResponse
	if err := p.client.GetJSON(ctx, path, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}

	items := make([]interface{}, 0, len(result.Logs))
	for _, entry := range result.Logs {
		item := p.convertEntry(entry, query.Kind)
		if item != nil {
			items = append(items, item)
		}
	}

	return &providers.HistoryResponse{
		Total: result.Total,
		Items: items,
	}, nil
}

// convertEntry decodes the untyped details map into the typed shape for the
// queried kind
func (p *AuditProvider) convertEntry(entry LogEntry, kind string) interface{} {
	fid, _ := strconv.ParseInt(entry.UserID, 10, 64)

	switch kind {
	case "race":
		var details RaceDetails
		if err := mapstructure.Decode(entry.Details, &details); err != nil {
			p.logger.Warn().Err(err).Str("id", entry.ID).Msg("Failed to decode race details")
			return nil
		}
		return providers.RaceLog{
			FID:           fid,
			Username:      details.Username,
			Direction:     details.Direction,
			Correct:       details.Correct,
			PointsAwarded: details.PointsAwarded,
			Streak:        details.Streak,
			Boosted:       details.Boosted,
			FinalPrice:    details.FinalPrice,
			Timestamp:     entry.Timestamp,
		}
	case "purchase":
		var details PurchaseDetails
		if err := mapstructure.Decode(entry.Details, &details); err != nil {
			p.logger.Warn().Err(err).Str("id", entry.ID).Msg("Failed to decode purchase details")
			return nil
		}
		return providers.PurchaseLog{
			FID:       fid,
			Username:  details.Username,
			ItemType:  details.ItemType,
			ItemID:    details.ItemID,
			Cost:      details.Cost,
			Timestamp: entry.Timestamp,
		}
	case "unlock":
		var details UnlockDetails
		if err := mapstructure.Decode(entry.Details, &details); err != nil {
			p.logger.Warn().Err(err).Str("id", entry.ID).Msg("Failed to decode unlock details")
			return nil
		}
		return providers.UnlockLog{
			FID:        fid,
			Username:   details.Username,
			UnlockKind: details.UnlockKind,
			UnlockID:   details.UnlockID,
			UnlockName: details.UnlockName,
			Timestamp:  entry.Timestamp,
		}
	default:
		return entry
	}
}
