package product

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	indexMinCapacity = 1024
	indexFPR         = 0.001
)

// IDIndex is a bloom filter over known product ids. Cart and order paths
// consult it before touching the database so requests naming bogus ids are
// rejected without a round trip. False positives fall through to the catalog
// lookup; the filter never removes ids, so a deleted product also falls
// through and fails there.
type IDIndex struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewIDIndex builds an index seeded with the given ids.
func NewIDIndex(ids []string) *IDIndex {
	capacity := uint(len(ids))
	if capacity < indexMinCapacity {
		capacity = indexMinCapacity
	}
	f := bloom.NewWithEstimates(capacity, indexFPR)
	for _, id := range ids {
		f.AddString(id)
	}
	return &IDIndex{filter: f}
}

// Add records a newly created product id.
func (ix *IDIndex) Add(id string) {
	if ix == nil {
		return
	}
	ix.mu.Lock()
	ix.filter.AddString(id)
	ix.mu.Unlock()
}

// MayContain reports whether the id could be a known product. A nil index
// always reports true.
func (ix *IDIndex) MayContain(id string) bool {
	if ix == nil {
		return true
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.filter.TestString(id)
}
