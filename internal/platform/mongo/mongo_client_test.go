package mongo_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformmongo "attendance_backend/internal/platform/mongo"
	"attendance_backend/internal/platform/mongo/mongotest"
)

func TestNextSequence(t *testing.T) {
	db := mongotest.Database(t)
	ctx := context.Background()

	first, err := platformmongo.NextSequence(ctx, db, "users")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	second, err := platformmongo.NextSequence(ctx, db, "users")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second)

	other, err := platformmongo.NextSequence(ctx, db, "attendances")
	require.NoError(t, err)
	assert.Equal(t, uint(1), other)
}

func TestNextSequence_ConcurrentValuesAreUnique(t *testing.T) {
	db := mongotest.Database(t)
	ctx := context.Background()

	// Create the counter first so concurrent upserts do not race on insertion.
	_, err := platformmongo.NextSequence(ctx, db, "race")
	require.NoError(t, err)

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[uint]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := platformmongo.NextSequence(ctx, db, "race")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}
