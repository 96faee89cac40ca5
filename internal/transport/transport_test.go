package transport

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDir records every value asserted on the direction line, so tests
// can check the assert/settle/deassert sequence around a write.
type fakeDir struct {
	values []int
}

func (f *fakeDir) SetValue(v int) error {
	f.values = append(f.values, v)
	return nil
}

func (f *fakeDir) Close() error { return nil }

func openLoopback(t *testing.T) (*Transport, *fakeDir, *os.File) {
	t.Helper()
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	dir := &fakeDir{}
	tr := New(slave, dir)
	t.Cleanup(func() { tr.Close() })
	return tr, dir, master
}

func TestExchangeAssertsThenDeassertsDirectionLine(t *testing.T) {
	tr, dir, master := openLoopback(t)

	go func() {
		buf := make([]byte, 16)
		master.Read(buf)
	}()

	_, err := tr.Exchange(context.Background(), []byte{0x5A, 0x00, 0x00, 0x01}, 20*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, dir.values, 2)
	assert.Equal(t, 1, dir.values[0])
	assert.Equal(t, 0, dir.values[1])
}

func TestExchangeCollectsReplyUntilQuiet(t *testing.T) {
	tr, _, master := openLoopback(t)

	reply := []byte{0x06, 0xAA, 0xBB}
	go func() {
		buf := make([]byte, 16)
		master.Read(buf)
		master.Write(reply[:1])
		time.Sleep(2 * time.Millisecond)
		master.Write(reply[1:])
	}()

	start := time.Now()
	got, err := tr.Exchange(context.Background(), []byte{0x5A}, 15*time.Millisecond)
	elapsed := time.Since(start)
	require.NoError(t, err)
	assert.Equal(t, reply, got)
	// must wait at least the requested timeout past the write.
	assert.GreaterOrEqual(t, elapsed, 15*time.Millisecond)
}

func TestExchangeReturnsNilOnNoReply(t *testing.T) {
	tr, _, master := openLoopback(t)
	go func() {
		buf := make([]byte, 16)
		master.Read(buf)
	}()

	got, err := tr.Exchange(context.Background(), []byte{0x5A}, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExchangeRespectsContextCancellation(t *testing.T) {
	tr, _, master := openLoopback(t)
	go func() {
		buf := make([]byte, 16)
		master.Read(buf)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(2 * time.Millisecond)
		cancel()
	}()
	_, err := tr.Exchange(ctx, []byte{0x5A}, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
