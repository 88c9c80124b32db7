package capability

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct {
	mu     sync.Mutex
	closed []int
	err    error
}

func (r *closeRecorder) close(fd int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, fd)
	return r.err
}

func TestTranslateAndLookup(t *testing.T) {
	rec := &closeRecorder{}
	table := NewTable(rec.close)

	c, err := table.Translate(7)
	require.NoError(t, err)
	assert.True(t, c.IsValid())
	assert.Contains(t, c.String(), "cap_")

	fd, ok := table.Lookup(c)
	assert.True(t, ok)
	assert.Equal(t, 7, fd)
	assert.Equal(t, 1, table.Len())
}

func TestTranslateInvalidDescriptor(t *testing.T) {
	table := NewTable(func(int) error { return nil })

	c, err := table.Translate(-1)
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
	assert.False(t, c.IsValid())
	assert.Equal(t, 0, table.Len())
}

func TestTranslateUniqueCapabilities(t *testing.T) {
	table := NewTable(func(int) error { return nil })

	a, err := table.Translate(3)
	require.NoError(t, err)
	b, err := table.Translate(3)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
}

func TestReleaseClosesOnce(t *testing.T) {
	rec := &closeRecorder{}
	table := NewTable(rec.close)

	c, err := table.Translate(11)
	require.NoError(t, err)

	require.NoError(t, table.Release(c))
	assert.Equal(t, []int{11}, rec.closed)

	err = table.Release(c)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []int{11}, rec.closed)

	_, ok := table.Lookup(c)
	assert.False(t, ok)
}

func TestReleaseCloseError(t *testing.T) {
	rec := &closeRecorder{err: errors.New("boom")}
	table := NewTable(rec.close)

	c, err := table.Translate(4)
	require.NoError(t, err)

	err = table.Release(c)
	assert.Error(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestReleaseZeroCapability(t *testing.T) {
	table := NewTable(func(int) error { return nil })
	assert.ErrorIs(t, table.Release(Capability{}), ErrNotFound)
}

func TestClose(t *testing.T) {
	rec := &closeRecorder{}
	table := NewTable(rec.close)

	for fd := 3; fd < 6; fd++ {
		_, err := table.Translate(fd)
		require.NoError(t, err)
	}

	require.NoError(t, table.Close())
	assert.ElementsMatch(t, []int{3, 4, 5}, rec.closed)
	assert.Equal(t, 0, table.Len())

	_, err := table.Translate(6)
	assert.ErrorIs(t, err, ErrTableClosed)
}

func TestConcurrentTranslate(t *testing.T) {
	table := NewTable(func(int) error { return nil })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(fd int) {
			defer wg.Done()
			c, err := table.Translate(fd)
			assert.NoError(t, err)
			assert.NoError(t, table.Release(c))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, table.Len())
}
