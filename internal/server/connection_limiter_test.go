package server

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionLimiter_Capacity(t *testing.T) {
	l := NewConnectionLimiter(2)

	assert.True(t, l.Acquire())
	assert.True(t, l.Acquire())
	assert.False(t, l.Acquire())

	l.Release()
	assert.True(t, l.Acquire())
	assert.Equal(t, int64(2), l.Current())
}

func TestConnectionLimiter_Concurrent(t *testing.T) {
	l := NewConnectionLimiter(50)

	var wg sync.WaitGroup
	acquired := make(chan bool, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acquired <- l.Acquire()
		}()
	}
	wg.Wait()
	close(acquired)

	var ok int
	for a := range acquired {
		if a {
			ok++
		}
	}
	assert.Equal(t, 50, ok)
	assert.Equal(t, int64(50), l.Current())
}
