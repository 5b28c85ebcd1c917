package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/totegamma/catalog"
	"github.com/totegamma/catalog/internal/utils"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, event catalog.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "SignalService.Publish: marshal failed")
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return errors.Wrap(err, "SignalService.Publish: publish failed")
	}

	return nil
}

// Realtime forwards the events of the collections last sent on request to
// response until ctx is done or request is closed.
func (s *SignalService) Realtime(ctx context.Context, request <-chan []string, response chan<- catalog.Event) {
	pubsub := s.rdb.Subscribe(ctx)
	defer pubsub.Close()

	messages := pubsub.Channel()
	var current []string

	for {
		select {
		case <-ctx.Done():
			return
		case collections, ok := <-request:
			if !ok {
				return
			}
			next := make([]string, 0, len(collections))
			for _, c := range utils.DedupeAndTrim(collections) {
				next = append(next, catalog.EventChannel(c))
			}
			if len(current) > 0 {
				if err := pubsub.Unsubscribe(ctx, current...); err != nil {
					slog.ErrorContext(ctx, "failed to unsubscribe", slog.String("error", err.Error()), slog.String("module", "signal"))
				}
			}
			if len(next) > 0 {
				if err := pubsub.Subscribe(ctx, next...); err != nil {
					slog.ErrorContext(ctx, "failed to subscribe", slog.String("error", err.Error()), slog.String("module", "signal"))
				}
			}
			current = next
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event catalog.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(ctx, "invalid event payload", slog.String("error", err.Error()), slog.String("module", "signal"))
				continue
			}
			select {
			case response <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
