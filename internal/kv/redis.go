package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each record in a hash under "<prefix>rec:<key>" with the
// fields rev and body. A sorted set "<prefix>keys" (all scores 0) indexes the
// keys so range scans can use ZRANGEBYLEX. Writes run inside WATCH/MULTI on
// the record hash, which turns a concurrent change into ErrConflict.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps client. Prefix may be empty.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "notes:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) recordKey(key string) string { return r.prefix + "rec:" + key }
func (r *RedisStore) indexKey() string           { return r.prefix + "keys" }

func (r *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	m, err := r.client.HGetAll(ctx, r.recordKey(key)).Result()
	if err != nil {
		return nil, unavailable("redis get", err)
	}
	if len(m) == 0 {
		return nil, ErrNotFound
	}
	return &Record{Key: key, Rev: m["rev"], Body: []byte(m["body"])}, nil
}

// currentRev reads the stored revision inside a transaction; "" means absent.
func currentRev(ctx context.Context, tx *redis.Tx, rk string) (string, error) {
	rev, err := tx.HGet(ctx, rk, "rev").Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return rev, err
}

func (r *RedisStore) Put(ctx context.Context, rec *Record) (string, error) {
	rk := r.recordKey(rec.Key)
	rev := NextRevision(rec.Rev)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := currentRev(ctx, tx, rk)
		if err != nil {
			return err
		}
		if cur != rec.Rev {
			return ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, rk, "rev", rev, "body", rec.Body)
			p.ZAdd(ctx, r.indexKey(), redis.Z{Score: 0, Member: rec.Key})
			return nil
		})
		return err
	}, rk)
	if err != nil {
		return "", r.classify("redis put", err)
	}
	return rev, nil
}

func (r *RedisStore) Remove(ctx context.Context, key, rev string) error {
	rk := r.recordKey(key)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := currentRev(ctx, tx, rk)
		if err != nil {
			return err
		}
		if cur == "" {
			return ErrNotFound
		}
		if cur != rev {
			return ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, rk)
			p.ZRem(ctx, r.indexKey(), key)
			return nil
		})
		return err
	}, rk)
	if err != nil {
		return r.classify("redis remove", err)
	}
	return nil
}

func (r *RedisStore) Range(ctx context.Context, start, end string) ([]*Record, error) {
	by := &redis.ZRangeBy{Min: "-", Max: "+"}
	if start != "" {
		by.Min = "[" + start
	}
	if end != "" {
		by.Max = "(" + end
	}
	keys, err := r.client.ZRangeByLex(ctx, r.indexKey(), by).Result()
	if err != nil {
		return nil, unavailable("redis range", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err = r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = p.HGetAll(ctx, r.recordKey(k))
		}
		return nil
	})
	if err != nil {
		return nil, unavailable("redis range", err)
	}

	out := make([]*Record, 0, len(keys))
	for i, cmd := range cmds {
		m := cmd.Val()
		// removed between the index read and the fetch
		if len(m) == 0 {
			continue
		}
		out = append(out, &Record{Key: keys[i], Rev: m["rev"], Body: []byte(m["body"])})
	}
	return out, nil
}

func (r *RedisStore) classify(op string, err error) error {
	switch {
	case errors.Is(err, ErrConflict), errors.Is(err, redis.TxFailedErr):
		return ErrConflict
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	default:
		return unavailable(op, err)
	}
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
