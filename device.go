package gfxhal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gfxhal/chip"
	"github.com/gogpu/gfxhal/internal/watch"
	"github.com/gogpu/gfxhal/pipeline"
	"github.com/gogpu/gfxhal/settings"
)

// Device owns the capability snapshot of one GPU and the settings resolved
// for it. Settings is safe for concurrent use; Reread and Close are
// serialized internally.
type Device struct {
	caps    chip.Capabilities
	opts    options
	metrics *pipeline.Metrics

	mu     sync.Mutex // guards loader and closed
	loader *settings.Loader
	closed bool

	record atomic.Pointer[settings.Record]
}

// Open validates caps, resolves the settings for them once and publishes the
// frozen record. An unknown revision fails with ErrUnsupportedRevision.
func Open(caps chip.Capabilities, opts ...Option) (*Device, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := caps.Validate(); err != nil {
		return nil, fmt.Errorf("gfxhal: open: %w", err)
	}

	d := &Device{caps: caps, opts: o}
	if o.registerer != nil {
		d.metrics = pipeline.NewMetrics(o.registerer)
	}

	loaderOpts := []settings.Option{settings.WithComponentName(o.component)}
	if o.registrar != nil {
		loaderOpts = append(loaderOpts, settings.WithRegistrar(&lockedRegistrar{Registrar: o.registrar, mu: &d.mu}))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loader = settings.NewLoader(caps, loaderOpts...)
	rec, err := d.loader.Resolve(o.source)
	if err != nil {
		d.loader.Close()
		return nil, fmt.Errorf("gfxhal: open %s: %w", caps.Revision, err)
	}
	d.record.Store(rec)
	d.log().Info("gfxhal: device opened",
		"revision", caps.Revision, "level", caps.GfxLevel(), "hash", rec.Hash())
	return d, nil
}

func (d *Device) log() *slog.Logger {
	if d.opts.logger != nil {
		return d.opts.logger
	}
	return Logger()
}

// Capabilities returns the snapshot the device was opened with.
func (d *Device) Capabilities() chip.Capabilities { return d.caps }

// Settings returns the current frozen record. The record is never modified;
// a Reread publishes a new one.
func (d *Device) Settings() *settings.Record {
	return d.record.Load()
}

// Reread repeats the settings pipeline with src, or with the source given to
// Open when src is nil, and publishes the new record. On failure the current
// record stays published.
func (d *Device) Reread(src settings.Source) (*settings.Record, error) {
	if src == nil {
		src = d.opts.source
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	rec, err := d.loader.Reread(src)
	if err != nil {
		d.log().Warn("gfxhal: reread failed, keeping current settings", "err", err)
		return nil, fmt.Errorf("gfxhal: reread: %w", err)
	}
	prev := d.record.Swap(rec)
	if prev != nil && prev.Equal(rec) {
		d.log().Debug("gfxhal: reread produced identical settings", "hash", rec.Hash())
	} else {
		d.log().Info("gfxhal: settings reread", "hash", rec.Hash())
	}
	return rec, nil
}

// Watch rereads the settings from the file at path after each burst of
// changes until ctx is done. onReload, if not nil, sees every result.
func (d *Device) Watch(ctx context.Context, path string, onReload func(*settings.Record, error)) error {
	return watch.Settings(ctx, d, path, watch.Options{OnReload: onReload, Logger: d.log()})
}

// Close unregisters the settings from introspection. The last record stays
// readable. Close is idempotent.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.loader.Close()
	return nil
}

// CreatePipelines constructs the device's internal pipelines on dev with
// memory from alloc (nil uses the heap). Kinds are built in order and the
// first failure stops the batch; the returned set then holds the kinds built
// before it and must still be destroyed.
func (d *Device) CreatePipelines(dev pipeline.Device, alloc pipeline.Allocator) (*PipelineSet, error) {
	set, err := d.newPipelineSet(dev, alloc)
	if err != nil {
		return nil, err
	}
	err = set.factory.ConstructAll(set.table, &set.slots)
	return set, err
}

// CreatePipelinesParallel is CreatePipelines with every kind attempted
// concurrently, at most limit at a time. The error joins every failure.
func (d *Device) CreatePipelinesParallel(dev pipeline.Device, alloc pipeline.Allocator, limit int) (*PipelineSet, error) {
	set, err := d.newPipelineSet(dev, alloc)
	if err != nil {
		return nil, err
	}
	err = set.factory.ConstructAllParallel(set.table, &set.slots, limit)
	return set, err
}

func (d *Device) newPipelineSet(dev pipeline.Device, alloc pipeline.Allocator) (*PipelineSet, error) {
	table, err := pipeline.SelectFor(&d.caps)
	if err != nil {
		return nil, err
	}
	var fopts []pipeline.FactoryOption
	if d.metrics != nil {
		fopts = append(fopts, pipeline.WithMetrics(d.metrics))
	}
	return &PipelineSet{
		table:   table,
		factory: pipeline.NewFactory(dev, alloc, fopts...),
	}, nil
}

// PipelineSet holds the pipelines constructed for one device.
type PipelineSet struct {
	table   *pipeline.Table
	factory *pipeline.Factory
	slots   pipeline.Slots
}

// Table returns the binary table the set was built from.
func (s *PipelineSet) Table() *pipeline.Table { return s.table }

// Pipeline returns the handle for k, or nil if k was absent or not built.
func (s *PipelineSet) Pipeline(k pipeline.Kind) pipeline.Handle {
	if !k.Valid() {
		return nil
	}
	return s.slots[k].Handle
}

// Live returns the kinds that hold a pipeline.
func (s *PipelineSet) Live() []pipeline.Kind { return s.slots.Live() }

// Destroy destroys every pipeline in the set and releases its memory.
func (s *PipelineSet) Destroy() {
	s.factory.DestroyAll(&s.slots)
}

// lockedRegistrar hands the registrar components whose calls take the
// device lock, so introspection never races a Reread.
type lockedRegistrar struct {
	settings.Registrar
	mu *sync.Mutex
}

func (r *lockedRegistrar) RegisterComponent(name string, c settings.Component) error {
	return r.Registrar.RegisterComponent(name, &lockedComponent{c: c, mu: r.mu})
}

type lockedComponent struct {
	c  settings.Component
	mu *sync.Mutex
}

func (c *lockedComponent) Query(name string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.c.Query(name)
}

func (c *lockedComponent) Set(name string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.c.Set(name, value)
}
