package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/factionboard/internal/model"
	"github.com/mcoot/factionboard/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
//
// Uniqueness is enforced by claiming the normalized player name key with
// SETNX before the record is written; updates and deletes run under WATCH
// on the record key.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) ListRegistrations(ctx context.Context) ([]*model.Registration, error) {
	ids, err := s.client.LRange(ctx, registrationOrderKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.Registration{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = registrationKey(model.RegistrationID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	regs := make([]*model.Registration, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Deleted between LRANGE and MGET
		}
		reg, err := decode([]byte(str))
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}

	return regs, nil
}

func (s *Storage) GetRegistration(ctx context.Context, id model.RegistrationID) (*model.Registration, error) {
	return getRegistration(ctx, s.client, id)
}

func (s *Storage) InsertRegistration(ctx context.Context, reg *model.Registration) error {
	data, err := json.Marshal(reg)
	if err != nil {
		return err
	}

	nameKey := playerNameIndexKey(reg.NormalizedName())
	claimed, err := s.client.SetNX(ctx, nameKey, string(reg.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrDuplicatePlayer
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, registrationKey(reg.ID), data, 0) // No TTL
		pipe.RPush(ctx, registrationOrderKey(), string(reg.ID))
		return nil
	})
	if err != nil {
		// Release the claim so the name is not lost
		_ = s.client.Del(ctx, nameKey).Err()
		return err
	}
	return nil
}

func (s *Storage) UpdateRegistration(ctx context.Context, reg *model.Registration) error {
	data, err := json.Marshal(reg)
	if err != nil {
		return err
	}

	key := registrationKey(reg.ID)
	newName := reg.NormalizedName()

	return s.retryWatch(ctx, func(tx *redis.Tx) error {
		existing, err := getRegistration(ctx, tx, reg.ID)
		if err != nil {
			return err
		}

		oldName := existing.NormalizedName()
		renamed := oldName != newName
		if renamed {
			if err := s.claimName(ctx, tx, newName, reg.ID); err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if renamed {
				pipe.Del(ctx, playerNameIndexKey(oldName))
			}
			return nil
		})
		if err != nil && renamed {
			_ = s.client.Del(ctx, playerNameIndexKey(newName)).Err()
		}
		return err
	}, key)
}

func (s *Storage) DeleteRegistration(ctx context.Context, id model.RegistrationID) error {
	key := registrationKey(id)

	return s.retryWatch(ctx, func(tx *redis.Tx) error {
		existing, err := getRegistration(ctx, tx, id)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.Del(ctx, playerNameIndexKey(existing.NormalizedName()))
			pipe.LRem(ctx, registrationOrderKey(), 0, string(id))
			return nil
		})
		return err
	}, key)
}

// claimName takes the name index key for id, failing if another
// registration already owns it
func (s *Storage) claimName(ctx context.Context, tx *redis.Tx, name string, id model.RegistrationID) error {
	nameKey := playerNameIndexKey(name)
	claimed, err := tx.SetNX(ctx, nameKey, string(id), 0).Result()
	if err != nil {
		return err
	}
	if claimed {
		return nil
	}
	owner, err := tx.Get(ctx, nameKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if owner != string(id) {
		return model.ErrDuplicatePlayer
	}
	return nil
}

// retryWatch runs fn under WATCH on keys, retrying when the transaction
// loses an optimistic-lock race
func (s *Storage) retryWatch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < s.cfg.MaxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("redis transaction: %w after %d attempts", redis.TxFailedErr, s.cfg.MaxTxRetries)
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getRegistration(ctx context.Context, c getter, id model.RegistrationID) (*model.Registration, error) {
	data, err := c.Get(ctx, registrationKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRegistrationNotFound
		}
		return nil, err
	}
	return decode(data)
}

func decode(data []byte) (*model.Registration, error) {
	var reg model.Registration
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registration: %w", err)
	}
	return &reg, nil
}
