package status

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultRedisKey is the key holding the mirrored snapshot.
const DefaultRedisKey = "nidra:status"

// RedisOptions configures a RedisMirror.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	Key      string
}

// RedisMirror copies published snapshots to a Redis key so that other
// processes can read the latest classification. Writes happen on a
// background goroutine; only the newest pending snapshot is kept.
type RedisMirror struct {
	client  *redis.Client
	key     string
	log     logrus.FieldLogger
	pending chan Snapshot
	done    chan struct{}
}

// NewRedisMirror connects to Redis and starts the writer goroutine.
// A failed ping is logged but does not prevent the mirror from starting.
func NewRedisMirror(opts RedisOptions, log logrus.FieldLogger) *RedisMirror {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.Key == "" {
		opts.Key = DefaultRedisKey
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.WithError(err).WithField("address", opts.Address).Error("failed to connect to Redis")
	} else {
		log.WithField("address", opts.Address).Info("connected to Redis")
	}

	m := &RedisMirror{
		client:  client,
		key:     opts.Key,
		log:     log,
		pending: make(chan Snapshot, 1),
		done:    make(chan struct{}),
	}
	go m.run()
	return m
}

// Publish queues s for writing, replacing any snapshot not yet written.
func (m *RedisMirror) Publish(s Snapshot) {
	for {
		select {
		case m.pending <- s:
			return
		default:
		}
		select {
		case <-m.pending:
		default:
		}
	}
}

// Get reads the mirrored snapshot back from Redis.
func (m *RedisMirror) Get(ctx context.Context) (Snapshot, error) {
	raw, err := m.client.Get(ctx, m.key).Bytes()
	if err != nil {
		return Snapshot{}, fmt.Errorf("get %s: %w", m.key, err)
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode %s: %w", m.key, err)
	}
	return s, nil
}

// Close stops the writer and closes the Redis client.
func (m *RedisMirror) Close() error {
	close(m.pending)
	<-m.done
	return m.client.Close()
}

func (m *RedisMirror) run() {
	defer close(m.done)

	for s := range m.pending {
		data, err := json.Marshal(s)
		if err != nil {
			m.log.WithError(err).Error("encode snapshot")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err = m.client.Set(ctx, m.key, data, 0).Err()
		cancel()
		if err != nil {
			m.log.WithError(err).WithField("key", m.key).Warn("mirror snapshot to Redis")
		}
	}
}
