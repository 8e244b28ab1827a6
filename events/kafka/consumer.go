package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Event represents a generic Kafka event
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// PointsUpdateEvent represents a points adjustment published by another
// service (reward backends, support tooling). The race service folds
// these into the standings cache so ranks stay honest between refreshes.
type PointsUpdateEvent struct {
	FID       int64     `json:"fid"`
	Delta     int       `json:"delta"`      //adjustment amount
	NewPoints int       `json:"new_points"` //total after adjustment
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"timestamp"`
}

// PointsCache is an in-memory cache for the latest known points per player
type PointsCache struct {
	mu     sync.RWMutex
	points map[int64]int
	logger zerolog.Logger
}

const allPlayersKey int64 = -1

// NewPointsCache creates a new points cache
func NewPointsCache(logger zerolog.Logger) *PointsCache {
	return &PointsCache{
		points: make(map[int64]int),
		logger: logger,
	}
}

// Get retrieves a player's points from cache
func (pc *PointsCache) Get(fid int64) (int, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	points, exists := pc.points[fid]
	return points, exists
}

// Set updates a player's points in cache
func (pc *PointsCache) Set(fid int64, points int) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.points[fid] = points
	pc.logger.Debug().
		Int64("fid", fid).
		Int("points", points).
		Msg("Points cache updated")
}

// Subscription represents a client subscription for events
type Subscription struct {
	ID      string
	FID     int64
	Channel chan PointsUpdateEvent
}

// PlayerFilter is a function that determines if a player's updates should
// be processed. Returns true to process, false to skip.
type PlayerFilter func(fid int64) bool

// Consumer represents a Kafka consumer
type Consumer struct {
	reader      *kafka.Reader
	pointsCache *PointsCache
	logger      zerolog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	mu           sync.RWMutex
	subscribers  map[int64][]*Subscription
	playerFilter PlayerFilter
}

// ConsumerConfig holds Kafka consumer configuration
type ConsumerConfig struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
	Logger        zerolog.Logger
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(config ConsumerConfig, pointsCache *PointsCache) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.ConsumerGroup,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	return &Consumer{
		reader:      reader,
		pointsCache: pointsCache,
		logger:      config.Logger,
		ctx:         ctx,
		cancel:      cancel,
		subscribers: make(map[int64][]*Subscription),
	}
}

// Start begins consuming messages
func (c *Consumer) Start() error {
	c.wg.Add(1)
	go c.consume()
	c.logger.Info().Msg("Kafka consumer started")
	return nil
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() error {
	c.logger.Info().Msg("Stopping Kafka consumer...")
	c.cancel()
	c.wg.Wait()

	if err := c.reader.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Error closing Kafka reader")
		return err
	}

	c.logger.Info().Msg("Kafka consumer stopped")
	return nil
}

// consume is the main consumer loop
func (c *Consumer) consume() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			msg, err := c.reader.FetchMessage(c.ctx)
			if err != nil {
				if err == context.Canceled {
					return
				}
				c.logger.Error().Err(err).Msg("Error fetching message from Kafka")
				time.Sleep(time.Second)
				continue
			}

			if err := c.handleMessage(msg); err != nil {
				c.logger.Error().
					Err(err).
					Str("topic", msg.Topic).
					Int("partition", msg.Partition).
					Int64("offset", msg.Offset).
					Msg("Error handling message")
			}

			if err := c.reader.CommitMessages(c.ctx, msg); err != nil {
				c.logger.Error().Err(err).Msg("Error committing message")
			}
		}
	}
}

// handleMessage processes a single Kafka message
func (c *Consumer) handleMessage(msg kafka.Message) error {
	var event PointsUpdateEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return err
	}

	c.mu.RLock()
	shouldProcess := c.playerFilter == nil || c.playerFilter(event.FID)
	c.mu.RUnlock()

	if !shouldProcess {
		c.logger.Debug().
			Int64("fid", event.FID).
			Msg("Skipping points update (filtered out)")
		return nil
	}

	// Update cache
	c.pointsCache.Set(event.FID, event.NewPoints)

	// Broadcast to subscribers
	c.mu.RLock()
	if subs, exists := c.subscribers[event.FID]; exists {
		for _, sub := range subs {
			select {
			case sub.Channel <- event:
			default:
				c.logger.Warn().
					Str("sub_id", sub.ID).
					Int64("fid", event.FID).
					Msg("Subscriber channel full, dropping event")
			}
		}
	}
	// Broadcast to wildcard subscribers
	if subs, exists := c.subscribers[allPlayersKey]; exists {
		for _, sub := range subs {
			select {
			case sub.Channel <- event:
			default:
				c.logger.Warn().
					Str("sub_id", sub.ID).
					Int64("fid", event.FID).
					Msg("Subscriber channel full, dropping event")
			}
		}
	}
	c.mu.RUnlock()
	return nil
}

// GetPointsCache returns the points cache
func (c *Consumer) GetPointsCache() *PointsCache {
	return c.pointsCache
}

// SetPlayerFilter sets a filter function to skip updates for players this
// instance does not care about. A nil filter processes everything.
func (c *Consumer) SetPlayerFilter(filter PlayerFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerFilter = filter
	if filter != nil {
		c.logger.Info().Msg("Player filter set - will skip filtered points updates")
	} else {
		c.logger.Info().Msg("Player filter cleared - will process all points updates")
	}
}

// Subscribe subscribes to points updates for a specific player
func (c *Consumer) Subscribe(fid int64) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := &Subscription{
		ID:      uuid.New().String(),
		FID:     fid,
		Channel: make(chan PointsUpdateEvent, 10),
	}

	if _, exists := c.subscribers[fid]; !exists {
		c.subscribers[fid] = make([]*Subscription, 0)
	}
	c.subscribers[fid] = append(c.subscribers[fid], sub)

	c.logger.Debug().
		Int64("fid", fid).
		Str("sub_id", sub.ID).
		Msg("New subscription added")

	return sub
}

// SubscribeAll subscribes to points updates for every player.
func (c *Consumer) SubscribeAll() *Subscription {
	return c.Subscribe(allPlayersKey)
}

// Unsubscribe removes a subscription
func (c *Consumer) Unsubscribe(sub *Subscription) {
	c.UnsubscribeWithFID(sub.FID, sub.ID)
}

// UnsubscribeWithFID removes a subscription knowing the player ID
func (c *Consumer) UnsubscribeWithFID(fid int64, subID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	subs, exists := c.subscribers[fid]
	if !exists {
		return
	}

	newSubs := make([]*Subscription, 0, len(subs))
	for _, s := range subs {
		if s.ID == subID {
			close(s.Channel)
			continue
		}
		newSubs = append(newSubs, s)
	}

	if len(newSubs) == 0 {
		delete(c.subscribers, fid)
	} else {
		c.subscribers[fid] = newSubs
	}

	c.logger.Debug().
		Int64("fid", fid).
		Str("sub_id", subID).
		Msg("Subscription removed")
}
