package kv

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetSet(t *testing.T) {
	s := New[int64, string]()

	s.Set(1, "draft")
	val, ok := s.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "draft", val)

	_, ok = s.Get(2)
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	s := New[int64, string]()
	s.Set(1, "draft")

	s.Delete(1)
	s.Delete(1)

	_, ok := s.Get(1)
	assert.False(t, ok)
}

func TestStore_Update(t *testing.T) {
	s := New[int64, int]()

	s.Update(1, func(v int, ok bool) (int, bool) {
		assert.False(t, ok)
		return v + 1, true
	})
	s.Update(1, func(v int, ok bool) (int, bool) {
		assert.True(t, ok)
		return v + 1, true
	})

	v, _ := s.Get(1)
	assert.Equal(t, 2, v)

	s.Update(1, func(v int, _ bool) (int, bool) { return v, false })
	assert.Equal(t, 0, s.Len())
}

func TestStore_SetIfAbsent(t *testing.T) {
	s := New[int64, string]()

	assert.True(t, s.SetIfAbsent(7, "first"))
	assert.False(t, s.SetIfAbsent(7, "second"))

	v, _ := s.Get(7)
	assert.Equal(t, "first", v)
}

func TestStore_KeysAndClear(t *testing.T) {
	s := New[int64, int]()

	s.Set(10, 1)
	s.Set(20, 2)
	s.Set(30, 3)

	assert.Equal(t, 3, s.Len())
	assert.ElementsMatch(t, []int64{10, 20, 30}, s.Keys())

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestStore_ConcurrentSetIfAbsent(t *testing.T) {
	s := New[int64, int]()
	var wg sync.WaitGroup

	var mu sync.Mutex
	winners := 0

	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if s.SetIfAbsent(1, n) {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, s.Len())
}
