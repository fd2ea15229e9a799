package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/textdao/indexer"
)

// EventChannel is the redis pub/sub channel applied events are announced on.
const EventChannel = "textdao:events"

type SignalService struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewSignalService(redisClient *redis.Client, logger *slog.Logger) *SignalService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SignalService{
		rdb:    redisClient,
		logger: logger,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, event textdao.Event) error {
	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Notify implements dispatch.Notifier. Delivery is best effort: a publish
// failure never blocks event processing.
func (s *SignalService) Notify(ctx context.Context, ev textdao.Event) {
	if err := s.Publish(ctx, EventChannel, ev); err != nil {
		s.logger.WarnContext(ctx, "event signal publish failed",
			slog.String("type", string(ev.Type)),
			slog.String("error", err.Error()),
		)
	}
}

// Realtime forwards applied events to output until ctx is cancelled. input
// carries the client's event-type filter; an empty filter forwards
// everything.
func (s *SignalService) Realtime(ctx context.Context, input chan []string, output chan textdao.Event) {
	pubsub := s.rdb.Subscribe(ctx, EventChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	var filter []string

	for {
		select {
		case <-ctx.Done():
			return
		case types, ok := <-input:
			if !ok {
				return
			}
			filter = types
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev textdao.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.logger.WarnContext(ctx, "malformed event on signal channel",
					slog.String("error", err.Error()),
				)
				continue
			}
			if !typeMatches(filter, ev.Type) {
				continue
			}
			select {
			case output <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func typeMatches(filter []string, eventType textdao.EventType) bool {
	if len(filter) == 0 {
		return true
	}
	for _, t := range filter {
		if t == string(eventType) {
			return true
		}
	}
	return false
}
