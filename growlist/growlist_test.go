package growlist_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/gsingh-ds/lockfree/growlist"
)

func TestAppend_SequentialFromSmallInitialCapacity(t *testing.T) {
	g := growlist.New[int](1)
	for i := 0; i < 1000; i++ {
		idx := g.MustAppend(i)
		require.Equal(t, i, idx)
	}
	require.Equal(t, 1000, g.Count())
	for i := 0; i < 1000; i++ {
		v, err := g.Get(i)
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
}

func TestAppend_ConcurrentMultisetPreserved(t *testing.T) {
	const (
		threads    = 16
		perThread  = 100_000
		totalCount = threads * perThread
	)

	g := growlist.New[int](16)

	var eg errgroup.Group
	for id := 0; id < threads; id++ {
		id := id
		eg.Go(func() error {
			for i := 0; i < perThread; i++ {
				if _, err := g.Append(id); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	require.Equal(t, totalCount, g.Count())

	counts := make(map[int]int, threads)
	for v := range g.Iterate() {
		counts[v]++
	}
	require.Len(t, counts, threads)
	for id := 0; id < threads; id++ {
		assert.Equalf(t, perThread, counts[id], "thread id %d", id)
	}
}

func TestAppend_IndicesAreUniqueAndContiguous(t *testing.T) {
	const (
		threads   = 8
		perThread = 5000
	)

	g := growlist.New[int](4)
	indices := make(chan int, threads*perThread)

	var eg errgroup.Group
	for id := 0; id < threads; id++ {
		eg.Go(func() error {
			for i := 0; i < perThread; i++ {
				idx, err := g.Append(0)
				if err != nil {
					return err
				}
				indices <- idx
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())
	close(indices)

	seen := make(map[int]bool, threads*perThread)
	for idx := range indices {
		require.Falsef(t, seen[idx], "index %d returned twice", idx)
		seen[idx] = true
	}
	require.Len(t, seen, threads*perThread)
	for i := 0; i < threads*perThread; i++ {
		require.Truef(t, seen[i], "index %d never returned", i)
	}
}

func TestGrowth_CapacityIsPowerOfTwoAndCoversAppends(t *testing.T) {
	const (
		threads   = 2
		perThread = 2000
	)

	g := growlist.New[int](4)

	var eg errgroup.Group
	for id := 0; id < threads; id++ {
		eg.Go(func() error {
			for i := 0; i < perThread; i++ {
				if _, err := g.Append(id); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	total := threads * perThread
	cap := g.Capacity()
	require.GreaterOrEqual(t, cap, total)
	require.Zero(t, cap&(cap-1), "capacity %d is not a power of two", cap)
}

func TestGrowth_PreservesDataAcrossResize(t *testing.T) {
	g := growlist.New[int](2)
	for i := 0; i < 64; i++ {
		g.MustAppend(i)
	}
	for i := 0; i < 64; i++ {
		v, err := g.Get(i)
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
}

func TestGet_OutOfBounds(t *testing.T) {
	g := growlist.New[int](4)
	g.MustAppend(1)

	_, err := g.Get(1)
	require.ErrorIs(t, err, growlist.ErrOutOfBounds)

	_, err = g.Get(-1)
	require.ErrorIs(t, err, growlist.ErrOutOfBounds)
}

func TestSet_OverwritesFullyAddedSlot(t *testing.T) {
	g := growlist.New[int](4)
	g.MustAppend(1)
	g.MustAppend(2)

	require.NoError(t, g.Set(0, 99))
	v, err := g.Get(0)
	require.NoError(t, err)
	require.Equal(t, 99, v)

	require.ErrorIs(t, g.Set(2, 1), growlist.ErrOutOfBounds)
}

func TestCompareAndSwap(t *testing.T) {
	g := growlist.New[int](4)
	g.MustAppend(1)

	prev, err := g.CompareAndSwap(0, 1, 2)
	require.NoError(t, err)
	require.Equal(t, 1, prev)

	v, err := g.Get(0)
	require.NoError(t, err)
	require.Equal(t, 2, v)

	// Stale expectation: no change, previous value returned is the
	// current one, not the stale expectation.
	prev, err = g.CompareAndSwap(0, 1, 3)
	require.NoError(t, err)
	require.Equal(t, 2, prev)
}

func TestContainsAndIndexOf(t *testing.T) {
	g := growlist.New[string](4)
	g.MustAppend("a")
	g.MustAppend("b")
	g.MustAppend("c")

	require.True(t, g.Contains("b"))
	require.False(t, g.Contains("z"))
	require.Equal(t, 1, g.IndexOf("b"))
	require.Equal(t, -1, g.IndexOf("z"))
}

func TestCopyTo(t *testing.T) {
	g := growlist.New[int](4)
	for i := 0; i < 5; i++ {
		g.MustAppend(i)
	}

	buf := make([]int, 7)
	n := g.CopyTo(buf, 2)
	require.Equal(t, 5, n)
	require.Equal(t, []int{0, 0, 0, 1, 2, 3, 4}, buf)
}

func TestIterateRange_InvalidRange(t *testing.T) {
	g := growlist.New[int](4)
	g.MustAppend(1)

	_, err := g.IterateRange(2, 1)
	require.True(t, errors.Is(err, growlist.ErrInvalidRange))
}

func TestIterate_SnapshotsCountAtCallTime(t *testing.T) {
	g := growlist.New[int](4)
	for i := 0; i < 10; i++ {
		g.MustAppend(i)
	}

	seq := g.Iterate()
	g.MustAppend(10) // appended after the snapshot was taken

	var got []int
	for v := range seq {
		got = append(got, v)
	}
	require.Len(t, got, 10)
}
