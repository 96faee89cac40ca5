package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/plense/plensor-gateway/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// labeled builds a Message whose Target alone identifies it, so ordering
// tests can read off a short, self-describing sequence.
func labeled(id protocol.SensorId) Message {
	return Message{Target: id, Origin: OriginPeriodic}
}

func TestQueueOrdering(t *testing.T) {
	q := New()
	q.PushBack(labeled(1))  // A
	q.PushBack(labeled(2))  // B
	q.PushFront(labeled(3)) // C
	q.PushBack(labeled(4))  // D
	q.PushFront(labeled(5)) // E

	var got []protocol.SensorId
	for i := 0; i < 5; i++ {
		m, ok := q.TryPop()
		require.True(t, ok)
		got = append(got, m.Target)
	}
	assert.Equal(t, []protocol.SensorId{5, 3, 1, 2, 4}, got)
}

func TestPopBlocksUntilPush(t *testing.T) {
	q := New()
	var wg sync.WaitGroup
	wg.Add(1)
	var got Message
	var ok bool
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		got, ok = q.Pop(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	q.PushBack(labeled(9))
	wg.Wait()
	require.True(t, ok)
	assert.Equal(t, protocol.SensorId(9), got.Target)
}

func TestPopRespectsContextCancellation(t *testing.T) {
	q := New()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, ok := q.Pop(ctx)
	assert.False(t, ok)
}

func TestClearEmptiesQueue(t *testing.T) {
	q := New()
	q.PushBack(labeled(1))
	q.PushBack(labeled(2))
	q.Clear()
	assert.Equal(t, 0, q.Len())
}
