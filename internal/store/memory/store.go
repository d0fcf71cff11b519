package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/mcoot/wordparty/internal/store"
)

// Store is an in-memory implementation of the shared store.
//
// Writes are applied under a lock and the resulting notifications are queued
// in write order. Whichever caller finds the queue idle drains it, so a
// handler that writes back into the store never re-enters itself and every
// subscriber sees changes to its path in the order they were written.
type Store struct {
	mu     sync.RWMutex
	root   map[string]any
	subs   map[uint64]*subscriber
	nextID uint64

	dmu         sync.Mutex
	queue       []delivery
	dispatching bool
}

type subscriber struct {
	path    string
	segs    []string
	handler store.Handler
	sub     *store.Subscription
}

type delivery struct {
	sub  *subscriber
	snap store.Snapshot
}

// New creates a new in-memory store
func New() *Store {
	return &Store{
		root: make(map[string]any),
		subs: make(map[uint64]*subscriber),
	}
}

// Ensure Store implements the interface
var _ store.Store = (*Store)(nil)

func (s *Store) Get(ctx context.Context, path string) (store.Snapshot, error) {
	segs, err := store.Split(path)
	if err != nil {
		return store.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return store.NewSnapshot(path, store.Clone(store.Lookup(s.root, segs))), nil
}

func (s *Store) Set(ctx context.Context, path string, value any) error {
	return s.Update(ctx, map[string]any{path: value})
}

func (s *Store) Remove(ctx context.Context, path string) error {
	return s.Update(ctx, map[string]any{path: nil})
}

func (s *Store) Update(ctx context.Context, updates map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	paths := make([]string, 0, len(updates))
	for p := range updates {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	if err := store.CheckOverlap(paths); err != nil {
		return err
	}

	type write struct {
		segs  []string
		value any
		incr  *int64
	}
	writes := make([]write, 0, len(paths))
	for _, p := range paths {
		segs, err := store.Split(p)
		if err != nil {
			return err
		}
		if inc, ok := updates[p].(store.Increment); ok {
			by := inc.By
			writes = append(writes, write{segs: segs, incr: &by})
			continue
		}
		v, err := store.Normalize(updates[p])
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		writes = append(writes, write{segs: segs, value: v})
	}

	s.mu.Lock()
	affected := s.affectedLocked(paths)
	before := make(map[uint64]any, len(affected))
	for _, id := range affected {
		before[id] = store.Clone(store.Lookup(s.root, s.subs[id].segs))
	}

	for _, w := range writes {
		if w.incr != nil {
			current, _ := store.Lookup(s.root, w.segs).(int64)
			setAt(s.root, w.segs, current+*w.incr)
			continue
		}
		setAt(s.root, w.segs, w.value)
	}

	for _, id := range affected {
		sub := s.subs[id]
		after := store.Lookup(s.root, sub.segs)
		if reflect.DeepEqual(before[id], after) {
			continue
		}
		s.enqueue(sub, store.NewSnapshot(sub.path, store.Clone(after)))
	}
	s.mu.Unlock()

	s.drain()
	return nil
}

func (s *Store) Subscribe(ctx context.Context, path string, h store.Handler) (*store.Subscription, error) {
	segs, err := store.Split(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	sub := &subscriber{path: path, segs: segs, handler: h}
	sub.sub = store.NewSubscription(func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	})
	s.subs[id] = sub
	s.enqueue(sub, store.NewSnapshot(path, store.Clone(store.Lookup(s.root, segs))))
	s.mu.Unlock()

	s.drain()
	return sub.sub, nil
}

// SubscriberCount returns the number of live subscriptions
func (s *Store) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// affectedLocked returns subscriber IDs whose path is related to any written path
func (s *Store) affectedLocked(paths []string) []uint64 {
	var ids []uint64
	for id, sub := range s.subs {
		for _, p := range paths {
			if store.Related(sub.path, p) {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// enqueue must be called with s.mu held so queue order matches write order
func (s *Store) enqueue(sub *subscriber, snap store.Snapshot) {
	s.dmu.Lock()
	s.queue = append(s.queue, delivery{sub: sub, snap: snap})
	s.dmu.Unlock()
}

func (s *Store) drain() {
	s.dmu.Lock()
	if s.dispatching {
		s.dmu.Unlock()
		return
	}
	s.dispatching = true
	for len(s.queue) > 0 {
		d := s.queue[0]
		s.queue = s.queue[1:]
		s.dmu.Unlock()
		if d.sub.sub.Active() {
			d.sub.handler(d.snap)
		}
		s.dmu.Lock()
	}
	s.dispatching = false
	s.dmu.Unlock()
}

// setAt writes value at segs, creating intermediate maps and pruning maps
// left empty by a delete
func setAt(root map[string]any, segs []string, value any) {
	if len(segs) == 1 {
		if value == nil {
			delete(root, segs[0])
		} else {
			root[segs[0]] = value
		}
		return
	}
	child, ok := root[segs[0]].(map[string]any)
	if !ok {
		if value == nil {
			return
		}
		child = make(map[string]any)
		root[segs[0]] = child
	}
	setAt(child, segs[1:], value)
	if len(child) == 0 {
		delete(root, segs[0])
	}
}
