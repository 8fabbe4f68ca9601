// Package cache keeps parsed documents in memory so repeated queries
// against the same upload skip parsing.
package cache

import (
	"container/list"
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dgallion1/mdquery/internal/doctree"
)

const defaultCleanupInterval = time.Minute

// Entry is a cached parse result. Forest is shared between concurrent
// readers and must not be modified.
type Entry struct {
	Key      string
	Filename string
	Doc      *doctree.Document
	Forest   []*doctree.Heading

	lastUsed time.Time
}

// Store is a thread-safe in-memory document cache with TTL and
// least-recently-used eviction.
type Store struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	ttl        time.Duration
	maxEntries int
	interval   time.Duration
	now        func() time.Time
	log        *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStore creates a store. ttl <= 0 disables expiry; maxEntries <= 0
// disables the size bound.
func NewStore(ttl time.Duration, maxEntries int, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	interval := defaultCleanupInterval
	if ttl > 0 && ttl/2 < interval {
		interval = max(ttl/2, time.Millisecond)
	}
	return &Store{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		ttl:        ttl,
		maxEntries: maxEntries,
		interval:   interval,
		now:        time.Now,
		log:        log.Named("cache"),
	}
}

// Key derives the cache key for content uploaded as filename and parsed
// by the named parser. Entries carry the filename and derived title, so
// the name is part of the identity.
func Key(parserName, filename string, content []byte) string {
	return ContentHashHex(append([]byte(parserName+"\x00"+filename+"\x00"), content...))
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// Get returns the entry for key and marks it used.
func (s *Store) Get(key string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*Entry)
	now := s.now()
	if s.expired(e, now) {
		s.removeLocked(el)
		return nil, false
	}
	e.lastUsed = now
	s.order.MoveToFront(el)
	return e, true
}

// Put stores a document and its forest under key, evicting the least
// recently used entry when the store is full.
func (s *Store) Put(key, filename string, doc *doctree.Document, forest []*doctree.Heading) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &Entry{Key: key, Filename: filename, Doc: doc, Forest: forest, lastUsed: s.now()}
	if el, ok := s.entries[key]; ok {
		el.Value = e
		s.order.MoveToFront(el)
		return e
	}
	s.entries[key] = s.order.PushFront(e)

	for s.maxEntries > 0 && s.order.Len() > s.maxEntries {
		oldest := s.order.Back()
		s.log.Debug("evicting least recently used document",
			zap.String("filename", oldest.Value.(*Entry).Filename))
		s.removeLocked(oldest)
	}
	return e
}

// Len returns the number of cached documents.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Cleanup removes expired entries and returns how many were dropped.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for el := s.order.Back(); el != nil; {
		prev := el.Prev()
		if s.expired(el.Value.(*Entry), now) {
			s.removeLocked(el)
			removed++
		}
		el = prev
	}
	return removed
}

// Start launches the background cleanup loop.
func (s *Store) Start(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				if n := s.Cleanup(); n > 0 {
					s.log.Debug("expired cached documents", zap.Int("count", n))
				}
			}
		}
	}()
}

// Stop ends the cleanup loop and waits for it to exit.
func (s *Store) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Store) expired(e *Entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastUsed) > s.ttl
}

func (s *Store) removeLocked(el *list.Element) {
	delete(s.entries, el.Value.(*Entry).Key)
	s.order.Remove(el)
}
