package cache

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_BasicOperations(t *testing.T) {
	s := New[[]string]()

	t.Run("Set and Get", func(t *testing.T) {
		s.Set("job-1", []string{"s1", "s2"})
		v, ok := s.Get("job-1")
		require.True(t, ok)
		assert.Equal(t, []string{"s1", "s2"}, v)
	})

	t.Run("empty list is a hit", func(t *testing.T) {
		s.Set("job-2", []string{})
		v, ok := s.Get("job-2")
		assert.True(t, ok)
		assert.Empty(t, v)
	})

	t.Run("missing key", func(t *testing.T) {
		v, ok := s.Get("nope")
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("Delete", func(t *testing.T) {
		s.Set("job-3", []string{"s9"})
		s.Delete("job-3")
		_, ok := s.Get("job-3")
		assert.False(t, ok)
		s.Delete("job-3")
	})
}

func TestStore_EntriesDoNotExpire(t *testing.T) {
	s := New[int]()
	s.Set("k", 1)
	time.Sleep(10 * time.Millisecond)
	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	s.Set("k", 2)
	v, _ = s.Get("k")
	assert.Equal(t, 2, v)
}

func TestStore_ClearAndKeys(t *testing.T) {
	s := New[int]()
	s.Set("b", 2)
	s.Set("a", 1)

	keys := s.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b"}, keys)
	assert.Equal(t, 2, s.ItemCount())

	s.Clear()
	assert.Equal(t, 0, s.ItemCount())
	assert.Empty(t, s.Keys())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New[int]()
	var wg sync.WaitGroup

	for i := range 10 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range 100 {
				key := string(rune('a' + id))
				s.Set(key, j)
				s.Get(key)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, s.ItemCount())
}
