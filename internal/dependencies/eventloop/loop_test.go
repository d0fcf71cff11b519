package eventloop

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/wordparty/internal/testutil"
)

func TestRunsInPostOrder(t *testing.T) {
	l := New(testutil.NopLogger())
	defer l.Close()

	var got []int
	for i := 0; i < 50; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	l.Flush()

	assert.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
	assert.Equal(t, uint64(50), l.Processed())
}

func TestFlushWaitsForNestedPosts(t *testing.T) {
	l := New(testutil.NopLogger())
	defer l.Close()

	var got []string
	l.Post(func() {
		got = append(got, "outer")
		l.Post(func() { got = append(got, "inner") })
	})
	l.Flush()

	assert.Equal(t, []string{"outer", "inner"}, got)
}

func TestNeverRunsConcurrently(t *testing.T) {
	l := New(testutil.NopLogger())
	defer l.Close()

	var mu sync.Mutex
	active, maxActive := 0, 0
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				l.Post(func() {
					mu.Lock()
					active++
					if active > maxActive {
						maxActive = active
					}
					mu.Unlock()

					mu.Lock()
					active--
					mu.Unlock()
				})
			}
		}()
	}
	wg.Wait()
	l.Flush()

	assert.Equal(t, 1, maxActive)
	assert.Equal(t, uint64(160), l.Processed())
}

func TestPanicDoesNotStopLoop(t *testing.T) {
	l := New(testutil.NopLogger())
	defer l.Close()

	ran := false
	l.Post(func() { panic("boom") })
	l.Post(func() { ran = true })
	l.Flush()

	assert.True(t, ran)
}

func TestPostAfterClose(t *testing.T) {
	l := New(testutil.NopLogger())
	l.Close()
	l.Close()

	assert.False(t, l.Post(func() {}))
	l.Flush()
}
