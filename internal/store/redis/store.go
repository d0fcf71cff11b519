package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/store"
)

// Storage is a Redis-backed implementation of the shared store.
//
// Writes run inside WATCH/MULTI/EXEC on the touched bucket hashes and publish
// the written paths on each bucket's channel in the same transaction.
// Subscribers hold a pub/sub connection per subscription and re-read their
// path when a related write is announced, so bursts of writes may be
// observed as their final value only.
type Storage struct {
	client *redis.Client
	cfg    Config
	logger *slog.Logger
}

// New creates a new Redis storage instance
func New(cfg Config, logger *slog.Logger) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, wrapErr(err)
	}

	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.TxRetries <= 0 {
		cfg.TxRetries = DefaultConfig().TxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "redis-store")),
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ store.Store = (*Storage)(nil)

func (s *Storage) Get(ctx context.Context, path string) (store.Snapshot, error) {
	bucket, rel, err := bucketOf(path)
	if err != nil {
		return store.Snapshot{}, err
	}

	fields, err := s.client.HGetAll(ctx, treeKey(bucket)).Result()
	if err != nil {
		return store.Snapshot{}, wrapErr(err)
	}

	leaves := make(map[string]any)
	for field, raw := range fields {
		var relLeaf string
		switch {
		case rel == "" && field == rootField:
			relLeaf = ""
		case rel == "":
			relLeaf = field
		case field == rel:
			relLeaf = ""
		case store.IsAncestor(rel, field):
			relLeaf = strings.TrimPrefix(field, rel+"/")
		default:
			continue
		}
		v, err := decodeLeaf(raw)
		if err != nil {
			return store.Snapshot{}, model.Malformed(bucket+"/"+field, "%v", err)
		}
		leaves[relLeaf] = v
	}

	return store.NewSnapshot(path, store.Unflatten(leaves)), nil
}

func (s *Storage) Set(ctx context.Context, path string, value any) error {
	return s.Update(ctx, map[string]any{path: value})
}

func (s *Storage) Remove(ctx context.Context, path string) error {
	return s.Update(ctx, map[string]any{path: nil})
}

type write struct {
	path   string
	bucket string
	rel    string
	value  any
	incr   *int64
}

func (s *Storage) Update(ctx context.Context, updates map[string]any) error {
	paths := make([]string, 0, len(updates))
	for p := range updates {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	if err := store.CheckOverlap(paths); err != nil {
		return err
	}

	writes := make([]write, 0, len(paths))
	buckets := make(map[string][]string)
	for _, p := range paths {
		bucket, rel, err := bucketOf(p)
		if err != nil {
			return err
		}
		w := write{path: p, bucket: bucket, rel: rel}
		if inc, ok := updates[p].(store.Increment); ok {
			by := inc.By
			w.incr = &by
		} else {
			v, err := store.Normalize(updates[p])
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			w.value = v
		}
		writes = append(writes, w)
		buckets[bucket] = append(buckets[bucket], p)
	}

	keys := make([]string, 0, len(buckets))
	for b := range buckets {
		keys = append(keys, treeKey(b))
	}
	sort.Strings(keys)

	txf := func(tx *redis.Tx) error {
		existing := make(map[string][]string, len(buckets))
		for b := range buckets {
			fields, err := tx.HKeys(ctx, treeKey(b)).Result()
			if err != nil {
				return err
			}
			existing[b] = fields
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, w := range writes {
				key := treeKey(w.bucket)
				var dels []string
				for _, f := range existing[w.bucket] {
					if conflicts(f, w.rel) && !(w.incr != nil && f == fieldFor(w.rel)) {
						dels = append(dels, f)
					}
				}
				if len(dels) > 0 {
					pipe.HDel(ctx, key, dels...)
				}

				if w.incr != nil {
					pipe.HIncrBy(ctx, key, fieldFor(w.rel), *w.incr)
					continue
				}
				for relLeaf, v := range store.Flatten(w.value) {
					field := w.rel
					if relLeaf != "" {
						field = store.Join(nonEmpty(w.rel, relLeaf)...)
					}
					data, err := json.Marshal(v)
					if err != nil {
						return err
					}
					pipe.HSet(ctx, key, fieldFor(field), data)
				}
			}
			for b, written := range buckets {
				msg, err := json.Marshal(written)
				if err != nil {
					return err
				}
				pipe.Publish(ctx, notifyChannel(b), msg)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.cfg.TxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return wrapErr(err)
	}
	return fmt.Errorf("%w: write contention on %v", model.ErrNetworkTransient, paths)
}

func (s *Storage) Subscribe(ctx context.Context, path string, h store.Handler) (*store.Subscription, error) {
	bucket, _, err := bucketOf(path)
	if err != nil {
		return nil, err
	}

	// Subscribe before the initial read so no write falls in between
	ps := s.client.Subscribe(ctx, notifyChannel(bucket))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, wrapErr(err)
	}

	subCtx, cancel := context.WithCancel(context.Background())
	sub := store.NewSubscription(func() {
		cancel()
		_ = ps.Close()
	})

	initial, err := s.Get(ctx, path)
	if err != nil {
		sub.Release()
		return nil, err
	}

	go s.deliver(subCtx, sub, ps, path, h, initial)
	return sub, nil
}

// deliver runs the handler for one subscription, one notification at a time
func (s *Storage) deliver(ctx context.Context, sub *store.Subscription, ps *redis.PubSub, path string, h store.Handler, initial store.Snapshot) {
	last := initial.Value()
	if !sub.Active() {
		return
	}
	h(initial)

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var written []string
			if err := json.Unmarshal([]byte(msg.Payload), &written); err != nil {
				s.logger.Warn("ignoring malformed notification",
					slog.String("channel", msg.Channel),
					slog.String("error", err.Error()))
				continue
			}
			if !anyRelated(path, written) {
				continue
			}
			snap, err := s.Get(ctx, path)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Warn("failed to read after notification",
					slog.String("path", path),
					slog.String("error", err.Error()))
				continue
			}
			if reflect.DeepEqual(last, snap.Value()) {
				continue
			}
			last = snap.Value()
			if !sub.Active() {
				return
			}
			h(snap)
		}
	}
}

func anyRelated(path string, written []string) bool {
	for _, w := range written {
		if store.Related(path, w) {
			return true
		}
	}
	return false
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func decodeLeaf(raw string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return nil, fmt.Errorf("non-integer number %q", raw)
		}
		return n, nil
	case string, bool:
		return x, nil
	}
	return nil, fmt.Errorf("unsupported leaf %q", raw)
}

// wrapErr classifies connectivity failures as transient
func wrapErr(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", model.ErrNetworkTransient, err)
}
