package pipeline

import "sync"

// Device builds pipeline objects. Its methods may be called concurrently for
// different kinds.
type Device interface {
	// PipelineSize returns the backing memory a pipeline for b needs.
	PipelineSize(b *Binary) (int, error)

	// CreatePipeline builds a pipeline for b in mem, which has the size
	// PipelineSize reported.
	CreatePipeline(b *Binary, mem []byte) (Handle, error)
}

// Handle is a constructed device object.
type Handle interface {
	Destroy()
}

// Allocator supplies pipeline backing memory.
type Allocator interface {
	// Alloc returns a block of size bytes, or nil if none is available.
	Alloc(size int) []byte
	// Free releases a block returned by Alloc.
	Free(block []byte)
}

// HeapAllocator allocates from the Go heap and never fails.
type HeapAllocator struct{}

// Alloc returns a new zeroed block.
func (HeapAllocator) Alloc(size int) []byte {
	if size < 0 {
		return nil
	}
	return make([]byte, size)
}

// Free does nothing; the garbage collector reclaims the block.
func (HeapAllocator) Free([]byte) {}

// BudgetAllocator allocates from the heap up to a fixed number of
// outstanding bytes. It is safe for concurrent use.
type BudgetAllocator struct {
	mu          sync.Mutex
	limit       int
	outstanding int
}

// NewBudgetAllocator returns an allocator that holds at most limit bytes.
func NewBudgetAllocator(limit int) *BudgetAllocator {
	return &BudgetAllocator{limit: limit}
}

// Alloc returns a block, or nil if it would exceed the budget.
func (a *BudgetAllocator) Alloc(size int) []byte {
	if size < 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.outstanding+size > a.limit {
		return nil
	}
	a.outstanding += size
	return make([]byte, size)
}

// Free returns block's bytes to the budget.
func (a *BudgetAllocator) Free(block []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outstanding -= len(block)
}

// Outstanding returns the bytes currently allocated.
func (a *BudgetAllocator) Outstanding() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.outstanding
}

// Limit returns the budget.
func (a *BudgetAllocator) Limit() int { return a.limit }
