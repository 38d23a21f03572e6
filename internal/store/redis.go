package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisTimeout = 3 * time.Second

// putScript writes the envelope but keeps the larger of the stored and the
// incoming timestamp.
var putScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
local ts = tonumber(ARGV[2])
if cur then
	local ok, prev = pcall(cjson.decode, cur)
	if ok and prev['t'] and tonumber(prev['t']) > ts then
		ts = tonumber(prev['t'])
	end
end
redis.call('SET', KEYS[1], cjson.encode({v = ARGV[1], t = ts}))
return ts
`)

type redisEnvelope struct {
	Value string `json:"v"`
	T     int64  `json:"t"`
}

// Redis stores entries as JSON envelopes under a key prefix, so Clear only
// touches newsdesk's keys.
type Redis struct {
	client *redis.Client
	prefix string
}

type RedisOptions struct {
	Addr     string
	DB       int
	Prefix   string
	Password string
}

func OpenRedis(opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		DB:          opts.DB,
		Password:    opts.Password,
		DialTimeout: redisTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &Redis{client: client, prefix: opts.Prefix}, nil
}

func (r *Redis) key(k string) string { return r.prefix + k }

func (r *Redis) Get(key string) (Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("reading %s: %w", key, err)
	}
	var env redisEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Entry{}, fmt.Errorf("decoding envelope %s: %w", key, err)
	}
	return Entry{Key: key, Value: []byte(env.Value), StoredAt: time.UnixMilli(env.T)}, nil
}

func (r *Redis) Put(key string, value []byte, storedAt time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return putScript.Run(ctx, r.client, []string{r.key(key)}, string(value), storedAt.UnixMilli()).Err()
}

func (r *Redis) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return r.client.Del(ctx, r.key(key)).Err()
}

var globEscape = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// keys scans raw redis keys under the store prefix followed by match.
func (r *Redis) keys(ctx context.Context, match string) ([]string, error) {
	var out []string
	iter := r.client.Scan(ctx, 0, globEscape.Replace(r.prefix+match)+"*", 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	return out, iter.Err()
}

func (r *Redis) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	keys, err := r.keys(ctx, "")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *Redis) Count() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	keys, err := r.keys(ctx, "")
	return len(keys), err
}

func (r *Redis) Keys(prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	raw, err := r.keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(raw))
	for i, k := range raw {
		out[i] = strings.TrimPrefix(k, r.prefix)
	}
	return out, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
