package pipeline

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Slot holds one constructed pipeline and its backing memory.
type Slot struct {
	Handle Handle
	mem    []byte
}

// Empty reports whether nothing was constructed into the slot.
func (s *Slot) Empty() bool { return s.Handle == nil }

// Slots is the output array of a batch, indexed by Kind.
type Slots [KindCount]Slot

// Live returns the kinds whose slot holds a handle.
func (s *Slots) Live() []Kind {
	var out []Kind
	for k := range KindCount {
		if !s[k].Empty() {
			out = append(out, k)
		}
	}
	return out
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithMetrics records construction outcomes in m.
func WithMetrics(m *Metrics) FactoryOption {
	return func(f *Factory) { f.metrics = m }
}

// Factory constructs pipelines on a device with memory from an allocator.
type Factory struct {
	dev     Device
	alloc   Allocator
	metrics *Metrics
}

// NewFactory returns a factory for dev. A nil alloc uses HeapAllocator.
func NewFactory(dev Device, alloc Allocator, opts ...FactoryOption) *Factory {
	if alloc == nil {
		alloc = HeapAllocator{}
	}
	f := &Factory{dev: dev, alloc: alloc}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Construct builds the pipeline for kind into slots[kind]. An absent binary
// succeeds without touching the device, allocator or slot. If the allocator
// fails the error wraps ErrOutOfMemory. If the device fails the block is
// released, the slot is left as it was, and the error is a
// *ConstructionError. A slot that already holds a pipeline is kept as is,
// so a batch can be retried on the slots of a partial one.
func (f *Factory) Construct(t *Table, kind Kind, slots *Slots) error {
	if !kind.Valid() {
		return fmt.Errorf("pipeline: invalid kind %d", uint8(kind))
	}
	if !slots[kind].Empty() {
		return nil
	}
	b := t.Binary(kind)
	if b.Absent() {
		f.metrics.observe(kind, ResultAbsent)
		return nil
	}

	size, err := f.dev.PipelineSize(b)
	if err != nil {
		f.metrics.observe(kind, ResultFailed)
		return &ConstructionError{Kind: kind, Err: err}
	}
	mem := f.alloc.Alloc(size)
	if mem == nil {
		f.metrics.observe(kind, ResultOutOfMemory)
		return fmt.Errorf("%w: %s needs %d bytes", ErrOutOfMemory, kind, size)
	}

	h, err := f.dev.CreatePipeline(b, mem)
	if err != nil {
		f.alloc.Free(mem)
		f.metrics.observe(kind, ResultFailed)
		return &ConstructionError{Kind: kind, Err: err}
	}
	slots[kind] = Slot{Handle: h, mem: mem}
	f.metrics.observe(kind, ResultOK)
	f.metrics.addBytes(len(mem))
	slogger().Debug("pipeline: constructed", "family", t.Family(), "kind", kind, "bytes", size)
	return nil
}

// ConstructAll builds every kind in order and stops at the first failure.
// Pipelines built before the failure stay in slots; the caller destroys
// them, typically with DestroyAll.
func (f *Factory) ConstructAll(t *Table, slots *Slots) error {
	for k := range KindCount {
		if err := f.Construct(t, k, slots); err != nil {
			slogger().Warn("pipeline: batch stopped", "family", t.Family(), "kind", k, "err", err)
			return err
		}
	}
	return nil
}

// ConstructAllParallel builds every kind concurrently, at most limit at a
// time (limit <= 0 means no limit). Every kind is attempted; the returned
// error joins the failures in kind order. Successful kinds stay in slots
// whatever else failed.
func (f *Factory) ConstructAllParallel(t *Table, slots *Slots, limit int) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	var errs [KindCount]error
	for k := range KindCount {
		g.Go(func() error {
			errs[k] = f.Construct(t, k, slots)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs[:]...)
}

// DestroyAll destroys every live pipeline in slots, releases its memory and
// empties the slot.
func (f *Factory) DestroyAll(slots *Slots) {
	for k := range KindCount {
		s := &slots[k]
		if s.Empty() {
			continue
		}
		s.Handle.Destroy()
		f.alloc.Free(s.mem)
		f.metrics.addBytes(-len(s.mem))
		*s = Slot{}
	}
}
