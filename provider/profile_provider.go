package provider

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/Web3vDev/SolanaRacer/config"
	apperrors "github.com/Web3vDev/SolanaRacer/errors"
	"github.com/Web3vDev/SolanaRacer/game"
	"github.com/Web3vDev/SolanaRacer/httpclient"
	"github.com/Web3vDev/SolanaRacer/pkg/providers"
	"github.com/rs/zerolog"
)

// ProfileProvider implements providers.ProfileStore against a
// PostgREST-style profile service. Rows are addressed by fid filters and
// partial updates travel as PATCH bodies with only the changed columns.
type ProfileProvider struct {
	client *httpclient.Client
	logger zerolog.Logger
}

// NewProfileProvider creates a new profile store provider
func NewProfileProvider(cfg *config.Config, logger zerolog.Logger) *ProfileProvider {
	svc := cfg.ExternalServices.ProfileService
	client := httpclient.New(httpclient.Config{
		BaseURL: svc.BaseURL,
		Timeout: svc.Timeout,
		Logger:  logger,
	})
	if svc.APIKey != "" {
		client.SetHeader("apikey", svc.APIKey)
		client.SetHeader("Authorization", "Bearer "+svc.APIKey)
	}

	return &ProfileProvider{
		client: client,
		logger: logger.With().Str("component", "profile_provider").Logger(),
	}
}

// Read fetches one profile row by fid
func (p *ProfileProvider) Read(ctx context.Context, fid int64) (*providers.ProfileRecord, error) {
	query := httpclient.EncodeQuery(map[string]string{
		"fid":   "eq." + strconv.FormatInt(fid, 10),
		"limit": "1",
	})

	resp, err := p.client.Get(ctx, "/profiles"+query, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrProfileStoreError, "profile read failed")
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, providers.ErrNotFound
	}
	if !resp.IsSuccess() {
		return nil, apperrors.NewWithDebug(apperrors.ErrProfileStoreError,
			"profile read failed", "status "+strconv.Itoa(resp.StatusCode))
	}

	var rows []providers.ProfileRecord
	if err := resp.Unmarshal(&rows); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrProfileStoreError, "profile read returned malformed data")
	}
	if len(rows) == 0 {
		return nil, providers.ErrNotFound
	}
	return &rows[0], nil
}

// Create inserts a new profile row
func (p *ProfileProvider) Create(ctx context.Context, record *providers.ProfileRecord) error {
	resp, err := p.client.Post(ctx, "/profiles", record, map[string]string{
		"Prefer": "return=minimal",
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrProfileStoreError, "profile create failed")
	}
	if !resp.IsSuccess() {
		return apperrors.NewWithDebug(apperrors.ErrProfileStoreError,
			"profile create failed", "status "+strconv.Itoa(resp.StatusCode))
	}
	return nil
}

// Update patches the changed columns of one profile row
func (p *ProfileProvider) Update(ctx context.Context, fid int64, update *providers.ProfileUpdate) error {
	if update == nil || update.IsEmpty() {
		return nil
	}

	query := httpclient.EncodeQuery(map[string]string{
		"fid": "eq." + strconv.FormatInt(fid, 10),
	})
	resp, err := p.client.Patch(ctx, "/profiles"+query, update, map[string]string{
		"Prefer": "return=minimal",
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrProfileStoreError, "profile update failed")
	}
	if !resp.IsSuccess() {
		return apperrors.NewWithDebug(apperrors.ErrProfileStoreError,
			"profile update failed", "status "+strconv.Itoa(resp.StatusCode))
	}
	return nil
}

// ListTopByPoints returns the highest scoring profiles for the leaderboard
func (p *ProfileProvider) ListTopByPoints(ctx context.Context, limit int) ([]providers.LeaderboardEntry, error) {
	query := httpclient.EncodeQuery(map[string]string{
		"select": "fid,username,display_name,avatar_url,points",
		"order":  "points.desc",
		"limit":  strconv.Itoa(limit),
	})

	var rows []providers.LeaderboardEntry
	if err := p.client.GetJSON(ctx, "/profiles"+query, nil, &rows); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrProfileStoreError, "leaderboard query failed")
	}

	for i := range rows {
		rows[i].Level = game.CurrentLevel(rows[i].Points).Level
	}
	return rows, nil
}

// CountWithPointsGreaterThan counts profiles strictly above the given score.
// The count rides on the Content-Range header so no rows travel.
func (p *ProfileProvider) CountWithPointsGreaterThan(ctx context.Context, points int) (int, error) {
	query := httpclient.EncodeQuery(map[string]string{
		"select": "fid",
		"points": "gt." + strconv.Itoa(points),
		"limit":  "1",
	})

	resp, err := p.client.Get(ctx, "/profiles"+query, map[string]string{
		"Prefer": "count=exact",
	})
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrProfileStoreError, "rank count failed")
	}
	if !resp.IsSuccess() {
		return 0, apperrors.NewWithDebug(apperrors.ErrProfileStoreError,
			"rank count failed", "status "+strconv.Itoa(resp.StatusCode))
	}

	count, err := parseContentRangeTotal(resp.Headers.Get("Content-Range"))
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrProfileStoreError, "rank count returned malformed range")
	}
	return count, nil
}

// parseContentRangeTotal extracts the total from a "0-0/42" style header
func parseContentRangeTotal(header string) (int, error) {
	idx := strings.LastIndex(header, "/")
	if idx < 0 || idx == len(header)-1 {
		return 0, strconv.ErrSyntax
	}
	total := header[idx+1:]
	if total == "*" {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(total)
}
