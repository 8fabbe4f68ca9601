package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/dgallion1/mdquery/internal/doctree"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	assert.Equal(t, want, ContentHashHex(data))
	assert.Equal(t, ContentHashHex(data), ContentHashHex(data))
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	assert.Equal(t, want, ContentHashHex([]byte{}))
}

func TestKey_DependsOnParserAndFilename(t *testing.T) {
	content := []byte("# Title\n")
	assert.NotEqual(t, Key("goldmark", "a.md", content), Key("treesitter", "a.md", content))
	assert.Equal(t, Key("goldmark", "a.md", content), Key("goldmark", "a.md", content))
	assert.NotEqual(t, Key("goldmark", "a.md", []byte("a")), Key("goldmark", "a.md", []byte("b")))
	assert.NotEqual(t, Key("goldmark", "a.md", content), Key("goldmark", "b.md", content))
	assert.NotEqual(t, Key("goldmark", "a.md", content), Key("goldmark", "a.html", content))
	assert.NotEqual(t, Key("go", "ldmark", content), Key("goldmark", "", content))
}

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestStore(ttl time.Duration, max int) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	s := NewStore(ttl, max, zap.NewNop())
	s.now = clock.Now
	return s, clock
}

func doc(name string) *doctree.Document {
	return &doctree.Document{Title: name, Source: []byte("# " + name + "\n")}
}

func TestStore_PutGet(t *testing.T) {
	s, _ := newTestStore(time.Hour, 0)

	_, ok := s.Get("missing")
	assert.False(t, ok)

	d := doc("a")
	forest := d.Tree()
	s.Put("k", "a.md", d, forest)

	e, ok := s.Get("k")
	require.True(t, ok)
	assert.Same(t, d, e.Doc)
	assert.Equal(t, "a.md", e.Filename)
	assert.Equal(t, 1, s.Len())

	s.Put("k", "a2.md", doc("a2"), nil)
	e, _ = s.Get("k")
	assert.Equal(t, "a2.md", e.Filename)
	assert.Equal(t, 1, s.Len())
}

func TestStore_TTL(t *testing.T) {
	s, clock := newTestStore(10*time.Minute, 0)
	s.Put("old", "old.md", doc("old"), nil)
	clock.Advance(6 * time.Minute)
	s.Put("new", "new.md", doc("new"), nil)
	clock.Advance(6 * time.Minute)

	assert.Equal(t, 1, s.Cleanup())
	_, ok := s.Get("old")
	assert.False(t, ok)
	_, ok = s.Get("new")
	assert.True(t, ok)

	// Get refreshed "new"; it survives another partial interval.
	clock.Advance(9 * time.Minute)
	_, ok = s.Get("new")
	assert.True(t, ok)

	clock.Advance(11 * time.Minute)
	_, ok = s.Get("new")
	assert.False(t, ok, "expired entries are not returned even before cleanup")
	assert.Equal(t, 0, s.Len())
}

func TestStore_LRUEviction(t *testing.T) {
	s, _ := newTestStore(0, 2)
	s.Put("a", "a.md", doc("a"), nil)
	s.Put("b", "b.md", doc("b"), nil)

	_, ok := s.Get("a")
	require.True(t, ok)

	s.Put("c", "c.md", doc("c"), nil)
	assert.Equal(t, 2, s.Len())

	_, ok = s.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = s.Get("a")
	assert.True(t, ok)
	_, ok = s.Get("c")
	assert.True(t, ok)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore(time.Hour, 8, nil)
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			s.Put(key, key, doc(key), nil)
			s.Get(key)
			s.Cleanup()
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, s.Len(), 4)
}

func TestStore_StartStop(t *testing.T) {
	s := NewStore(20*time.Millisecond, 0, zap.NewNop())
	s.Put("k", "k.md", doc("k"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	require.Eventually(t, func() bool { return s.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestStore_StopOnContextCancel(t *testing.T) {
	s := NewStore(time.Hour, 0, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()
	s.Stop()

	// Stop without Start, and with expiry disabled, is a no-op.
	NewStore(time.Hour, 0, nil).Stop()
	noTTL := NewStore(0, 0, nil)
	noTTL.Start(context.Background())
	noTTL.Stop()
}
