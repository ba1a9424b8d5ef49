package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"alcyxob/exercise-resolver/internal/domain"
	"alcyxob/exercise-resolver/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRecord(name, phonetic string, synonyms ...string) *domain.ExerciseRecord {
	return &domain.ExerciseRecord{
		ID:             uuid.NewString(),
		OriginalName:   name,
		NormalizedName: name,
		Synonyms:       synonyms,
		PhoneticKey:    phonetic,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestLoad_PopulatesAllIndexes(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryCatalogRepository()
	record := seedRecord("dumbbell press", "D514-P620", "db press", "dumbell press")
	_, _, err := repo.CreateOrGet(ctx, record)
	require.NoError(t, err)

	c := NewCatalogCache()
	require.NoError(t, c.Load(ctx, repo))
	assert.Equal(t, 1, c.Len())

	byName, ok := c.GetByNormalizedName("dumbbell press")
	require.True(t, ok)
	assert.Equal(t, record.ID, byName.ID)

	bySyn, ok := c.GetBySynonym("db press")
	require.True(t, ok)
	assert.Equal(t, record.ID, bySyn.ID)

	bucket := c.GetByPhoneticKey("D514-P620")
	require.Len(t, bucket, 1)
	assert.Equal(t, record.ID, bucket[0].ID)
}

func TestPut_InstallsNewRecord(t *testing.T) {
	c := NewCatalogCache()
	record := seedRecord("zercher squat", "Z626-S230", "zerker squat")
	c.Put(record)

	_, ok := c.GetByNormalizedName("zercher squat")
	assert.True(t, ok)
	_, ok = c.GetBySynonym("zerker squat")
	assert.True(t, ok)
	assert.Len(t, c.GetByPhoneticKey("Z626-S230"), 1)
}

func TestBumpUsage_ReplacesPointer(t *testing.T) {
	c := NewCatalogCache()
	record := seedRecord("goblet squat", "G143-S230")
	c.Put(record)

	before, _ := c.GetByID(record.ID)
	c.BumpUsage(record.ID)
	after, _ := c.GetByID(record.ID)

	assert.Equal(t, int64(0), before.UsageCount, "readers holding the old pointer see a stable value")
	assert.Equal(t, int64(1), after.UsageCount)
	assert.NotSame(t, before, after)

	// Unknown ids are a no-op.
	c.BumpUsage("missing")
}

func TestMostUsed_OrdersByUsage(t *testing.T) {
	c := NewCatalogCache()
	rare := seedRecord("pallof press", "P410-P620")
	popular := seedRecord("back squat", "B200-S230")
	popular.UsageCount = 40
	c.Put(rare)
	c.Put(popular)

	pool := c.MostUsed(1)
	require.Len(t, pool, 1)
	assert.Equal(t, popular.ID, pool[0].ID)

	assert.Len(t, c.MostUsed(10), 2)
	assert.Nil(t, c.MostUsed(0))
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	c := NewCatalogCache()
	record := seedRecord("deadlift", "D434")
	c.Put(record)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if r, ok := c.GetByNormalizedName("deadlift"); ok {
					assert.Equal(t, "deadlift", r.NormalizedName)
				}
				c.GetByPhoneticKey("D434")
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.BumpUsage(record.ID)
			}
		}()
	}
	wg.Wait()

	final, ok := c.GetByID(record.ID)
	require.True(t, ok)
	assert.Equal(t, int64(400), final.UsageCount)
}
