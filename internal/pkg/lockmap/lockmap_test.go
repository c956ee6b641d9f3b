package lockmap_test

import (
	"sync"
	"testing"

	"stock-hold-service/internal/pkg/lockmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockSerializesSameKey(t *testing.T) {
	m := lockmap.New[string]()
	counter := 0

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithLock("product", func() error {
				v := counter
				v++
				counter = v
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, m.Len())
}

func TestTryLock(t *testing.T) {
	m := lockmap.New[int]()

	unlock, ok := m.TryLock(1)
	require.True(t, ok)

	_, ok = m.TryLock(1)
	assert.False(t, ok, "second acquire of a held key must fail")

	other, ok := m.TryLock(2)
	require.True(t, ok, "different keys are independent")
	other()

	unlock()
	unlock() // idempotent

	again, ok := m.TryLock(1)
	require.True(t, ok)
	again()
	assert.Equal(t, 0, m.Len())
}
