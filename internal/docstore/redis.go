package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/five82/storefront/internal/logging"
)

const (
	valuePrefix  = "doc:"
	changePrefix = "doc-changes:"
	watchBuffer  = 16
)

// change is the pub/sub payload announcing a new document state.
type change struct {
	Exists bool            `json:"exists"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Redis stores each document under doc:<path> and announces every write
// on the doc-changes:<path> channel inside the same transaction.
type Redis struct {
	client *redis.Client
	log    logrus.FieldLogger
}

var _ Store = (*Redis)(nil)

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, log logrus.FieldLogger) *Redis {
	if log == nil {
		log = logging.Discard()
	}
	return &Redis{client: client, log: log}
}

// Get reads the current document.
func (r *Redis) Get(ctx context.Context, p string) (Snapshot, error) {
	if err := validPath(p); err != nil {
		return Snapshot{}, err
	}
	data, err := r.client.Get(ctx, valuePrefix+p).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{Path: p}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("redis get %s: %w", p, err)
	}
	return Snapshot{Path: p, Exists: true, Data: data}, nil
}

// Set replaces the document and publishes the new state.
func (r *Redis) Set(ctx context.Context, p string, data []byte) error {
	if err := validPath(p); err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("set %s: document is not valid JSON", p)
	}
	msg, err := json.Marshal(change{Exists: true, Data: data})
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, valuePrefix+p, data, 0)
		pipe.Publish(ctx, changePrefix+p, msg)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", p, err)
	}
	return nil
}

// Delete removes the document and publishes the deletion.
func (r *Redis) Delete(ctx context.Context, p string) error {
	if err := validPath(p); err != nil {
		return err
	}
	msg, err := json.Marshal(change{Exists: false})
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, valuePrefix+p)
		pipe.Publish(ctx, changePrefix+p, msg)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", p, err)
	}
	return nil
}

// Watch subscribes before reading the current value so no change between
// the read and the subscription is lost.
func (r *Redis) Watch(ctx context.Context, p string) (<-chan Snapshot, error) {
	if err := validPath(p); err != nil {
		return nil, err
	}
	sub := r.client.Subscribe(ctx, changePrefix+p)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", p, err)
	}

	initial, err := r.Get(ctx, p)
	if err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan Snapshot, watchBuffer)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		if !send(ctx, out, initial) {
			return
		}
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var c change
				if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
					r.log.WithError(err).WithField("path", p).Warn("dropping undecodable document change")
					continue
				}
				snap := Snapshot{Path: p, Exists: c.Exists}
				if c.Exists {
					snap.Data = []byte(c.Data)
				}
				if !send(ctx, out, snap) {
					return
				}
			}
		}
	}()
	return out, nil
}

func send(ctx context.Context, out chan<- Snapshot, snap Snapshot) bool {
	select {
	case out <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}
