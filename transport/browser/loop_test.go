// Copyright 2026 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package browser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestLoop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	t.Run("Order", func(t *testing.T) {
		l := NewLoop()
		var got []int
		for i := 0; i < 1000; i++ {
			i := i
			assert.True(t, l.Post(func() { got = append(got, i) }))
		}
		l.Close()
		assert.Len(t, got, 1000)
		for i, v := range got {
			assert.Equal(t, i, v)
		}
	})
	t.Run("Concurrent posters", func(t *testing.T) {
		l := NewLoop()
		var running, maxRunning int
		var mu sync.Mutex
		var wg sync.WaitGroup
		count := 0
		for g := 0; g < 10; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					l.Post(func() {
						mu.Lock()
						running++
						maxRunning = max(maxRunning, running)
						mu.Unlock()
						count++
						mu.Lock()
						running--
						mu.Unlock()
					})
				}
			}()
		}
		wg.Wait()
		l.Close()
		assert.Equal(t, 1000, count)
		assert.Equal(t, 1, maxRunning)
	})
	t.Run("Post from task", func(t *testing.T) {
		l := NewLoop()
		done := make(chan struct{})
		l.Post(func() {
			l.Post(func() { close(done) })
		})
		<-done
		l.Close()
	})
	t.Run("Closed", func(t *testing.T) {
		l := NewLoop()
		l.Close()
		assert.False(t, l.Post(func() {}))
		l.Close()
	})
}
