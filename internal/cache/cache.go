// Package cache holds an in-memory mirror of the catalog's normalized-name,
// synonym and phonetic-key indexes so the common exact/near-exact resolution
// path never touches the database. Population is a one-shot bulk load at
// startup; writes land through Put after a successful create. In a
// multi-process deployment the mirror is not kept consistent with other
// writers unless an invalidation broadcast is added on top.
package cache

import (
	"context"
	"sort"
	"sync"

	"alcyxob/exercise-resolver/internal/domain"
	"alcyxob/exercise-resolver/internal/repository"
)

// CatalogCache is safe for any number of concurrent readers. Records are
// stored as immutable pointers and installed under the write lock in one
// assignment, so a reader never observes a partially-constructed record.
type CatalogCache struct {
	mu         sync.RWMutex
	byID       map[string]*domain.ExerciseRecord
	byName     map[string]*domain.ExerciseRecord
	bySynonym  map[string]*domain.ExerciseRecord
	byPhonetic map[string][]*domain.ExerciseRecord
}

// NewCatalogCache creates an empty cache. Call Load before serving traffic.
func NewCatalogCache() *CatalogCache {
	return &CatalogCache{
		byID:       make(map[string]*domain.ExerciseRecord),
		byName:     make(map[string]*domain.ExerciseRecord),
		bySynonym:  make(map[string]*domain.ExerciseRecord),
		byPhonetic: make(map[string][]*domain.ExerciseRecord),
	}
}

// Load bulk-populates the cache from the catalog store, replacing any
// previous contents.
func (c *CatalogCache) Load(ctx context.Context, repo repository.CatalogRepository) error {
	records, err := repo.All(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]*domain.ExerciseRecord, len(records))
	byName := make(map[string]*domain.ExerciseRecord, len(records))
	bySynonym := make(map[string]*domain.ExerciseRecord)
	byPhonetic := make(map[string][]*domain.ExerciseRecord)
	for i := range records {
		record := &records[i]
		byID[record.ID] = record
		byName[record.NormalizedName] = record
		for _, syn := range record.Synonyms {
			bySynonym[syn] = record
		}
		if record.PhoneticKey != "" {
			byPhonetic[record.PhoneticKey] = append(byPhonetic[record.PhoneticKey], record)
		}
	}

	c.mu.Lock()
	c.byID = byID
	c.byName = byName
	c.bySynonym = bySynonym
	c.byPhonetic = byPhonetic
	c.mu.Unlock()
	return nil
}

// Put installs a newly created record into every index.
func (c *CatalogCache) Put(record *domain.ExerciseRecord) {
	if record == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[record.ID] = record
	c.byName[record.NormalizedName] = record
	for _, syn := range record.Synonyms {
		c.bySynonym[syn] = record
	}
	if record.PhoneticKey != "" {
		c.byPhonetic[record.PhoneticKey] = append(c.byPhonetic[record.PhoneticKey], record)
	}
}

// GetByID returns the cached record, if any.
func (c *CatalogCache) GetByID(id string) (*domain.ExerciseRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.byID[id]
	return record, ok
}

// GetByNormalizedName looks a canonical name up in the exact index.
func (c *CatalogCache) GetByNormalizedName(normalized string) (*domain.ExerciseRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.byName[normalized]
	return record, ok
}

// GetBySynonym looks a normalized variant up in the synonym index.
func (c *CatalogCache) GetBySynonym(synonym string) (*domain.ExerciseRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.bySynonym[synonym]
	return record, ok
}

// GetByPhoneticKey returns every cached record in the key's bucket.
func (c *CatalogCache) GetByPhoneticKey(key string) []*domain.ExerciseRecord {
	if key == "" {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	bucket := c.byPhonetic[key]
	out := make([]*domain.ExerciseRecord, len(bucket))
	copy(out, bucket)
	return out
}

// BumpUsage mirrors a successful usage increment. The record pointer is
// replaced, not mutated, so in-flight readers keep a consistent view.
func (c *CatalogCache) BumpUsage(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	old, ok := c.byID[id]
	if !ok {
		return
	}
	updated := *old
	updated.UsageCount = old.UsageCount + 1
	c.install(&updated, old)
}

// MostUsed returns up to n records ordered by descending usage count: the
// "recently used" pool the fuzzy channel scans beyond the phonetic bucket.
func (c *CatalogCache) MostUsed(n int) []*domain.ExerciseRecord {
	if n <= 0 {
		return nil
	}
	c.mu.RLock()
	records := make([]*domain.ExerciseRecord, 0, len(c.byID))
	for _, record := range c.byID {
		records = append(records, record)
	}
	c.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].UsageCount != records[j].UsageCount {
			return records[i].UsageCount > records[j].UsageCount
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	if len(records) > n {
		records = records[:n]
	}
	return records
}

// Len reports the number of cached records.
func (c *CatalogCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// install swaps old for updated across every index. Caller holds the write lock.
func (c *CatalogCache) install(updated, old *domain.ExerciseRecord) {
	c.byID[updated.ID] = updated
	c.byName[updated.NormalizedName] = updated
	for _, syn := range updated.Synonyms {
		c.bySynonym[syn] = updated
	}
	if updated.PhoneticKey != "" {
		bucket := c.byPhonetic[updated.PhoneticKey]
		for i, r := range bucket {
			if r == old {
				bucket[i] = updated
			}
		}
	}
}
