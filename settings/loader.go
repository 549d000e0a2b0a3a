package settings

import (
	"errors"
	"fmt"

	"github.com/gogpu/gfxhal/chip"
)

// Loader state errors.
var (
	// ErrNotReady is returned when the record is read before the loader
	// reaches StageFinalized.
	ErrNotReady = errors.New("settings: record not finalized")

	// ErrFrozen is returned for a mutation of a finalized record.
	ErrFrozen = errors.New("settings: record is frozen")

	// ErrStage is returned when a stage method is called out of order.
	ErrStage = errors.New("settings: stage called out of order")
)

// Stage is the loader's position in the resolution pipeline.
type Stage uint8

// Loader stages, in order. StageOverridden is the point between the
// workaround cascade and the final clamps.
const (
	StageUninitialized Stage = iota
	StageEarlyInit
	StageValidated
	StageOverridden
	StageFinalized
)

func (s Stage) String() string {
	switch s {
	case StageUninitialized:
		return "Uninitialized"
	case StageEarlyInit:
		return "EarlyInit"
	case StageValidated:
		return "Validated"
	case StageOverridden:
		return "Overridden"
	case StageFinalized:
		return "Finalized"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}

// DefaultComponentName is the name a loader registers under unless
// WithComponentName says otherwise.
const DefaultComponentName = "gfxhal.settings"

type loaderOptions struct {
	registrar Registrar
	component string
}

// Option configures a Loader.
type Option func(*loaderOptions)

// WithRegistrar registers the loader for external introspection during
// EarlyInit.
func WithRegistrar(r Registrar) Option {
	return func(o *loaderOptions) { o.registrar = r }
}

// WithComponentName sets the introspection component name.
func WithComponentName(name string) Option {
	return func(o *loaderOptions) { o.component = name }
}

// Loader resolves the settings of one device. It is single-threaded: the
// owner serializes every call, including Reread.
type Loader struct {
	caps chip.Capabilities
	bugs chip.HardwareBugs
	opts loaderOptions

	stage      Stage
	settings   Settings
	overridden map[string]struct{}
	record     *Record
	registered bool
}

// NewLoader creates a loader for caps. The capability snapshot is copied
// and kept across rereads.
func NewLoader(caps chip.Capabilities, opts ...Option) *Loader {
	o := loaderOptions{component: DefaultComponentName}
	for _, opt := range opts {
		opt(&o)
	}
	l := &Loader{caps: caps, opts: o}
	if caps.GfxLevel().Generation() == chip.Gfx11 {
		bugs, ok := chip.DetectGfx11Workarounds(caps.FamilyID, caps.ERevID)
		if !ok {
			slogger().Warn("settings: no hardware bug table for Gfx11 part",
				"revision", caps.Revision, "family", caps.FamilyID, "erev", caps.ERevID)
		}
		l.bugs = bugs
	}
	return l
}

// Capabilities returns the snapshot the loader resolves against.
func (l *Loader) Capabilities() chip.Capabilities { return l.caps }

// HardwareBugs returns the detected Gfx11 bug set, zero for other parts.
func (l *Loader) HardwareBugs() chip.HardwareBugs { return l.bugs }

// Stage returns the current stage.
func (l *Loader) Stage() Stage { return l.stage }

func (l *Loader) env() *Env {
	return &Env{Caps: &l.caps, Bugs: l.bugs, Settings: &l.settings, overridden: l.overridden}
}

func (l *Loader) expect(want Stage, op string) error {
	if l.stage != want {
		return fmt.Errorf("%w: %s in stage %s, want %s", ErrStage, op, l.stage, want)
	}
	return nil
}

// Init fills the baseline defaults, applies raw overrides from src and
// registers the loader for introspection. It fails if the capabilities
// report no shader engines or src cannot be read. An unknown revision is
// accepted and resolves to generic defaults.
func (l *Loader) Init(src Source) error {
	if err := l.expect(StageUninitialized, "Init"); err != nil {
		return err
	}
	if l.caps.NumShaderEngines == 0 {
		return fmt.Errorf("%w: %s reports zero shader engines", chip.ErrInvalidCapabilities, l.caps.Revision)
	}
	if src == nil {
		src = EmptySource{}
	}
	raw, err := src.Load()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreInit, err)
	}

	l.settings = Defaults()
	l.overridden = applyRaw(&l.settings, raw)
	l.record = nil
	l.stage = StageEarlyInit
	slogger().Debug("settings: early init", "revision", l.caps.Revision, "overrides", len(l.overridden))

	if l.opts.registrar != nil && !l.registered {
		if err := l.opts.registrar.RegisterComponent(l.opts.component, l); err != nil {
			slogger().Warn("settings: introspection registration failed", "component", l.opts.component, "err", err)
		} else {
			l.registered = true
		}
	}
	return nil
}

// Validate applies capability-derived formulas and hardware gating.
func (l *Loader) Validate() error {
	if err := l.expect(StageEarlyInit, "Validate"); err != nil {
		return err
	}
	validate(l.env())
	l.stage = StageValidated
	return nil
}

// Override applies the workaround cascade for the revision. An unknown
// revision has no cascade: the record keeps its generic values and a
// warning is logged.
func (l *Loader) Override() error {
	if err := l.expect(StageValidated, "Override"); err != nil {
		return err
	}
	rules := Cascade(l.caps.Revision)
	if _, err := chip.Lookup(l.caps.Revision); err != nil {
		slogger().Warn("settings: no workaround rules for revision, using generic defaults",
			"revision", l.caps.Revision)
	}
	env := l.env()
	if err := ApplyRules(env, rules); err != nil {
		return err
	}
	fixupAfterCascade(env)
	l.stage = StageOverridden
	return nil
}

// Finalize applies the global clamps, hashes and freezes the record.
func (l *Loader) Finalize() error {
	if err := l.expect(StageOverridden, "Finalize"); err != nil {
		return err
	}
	clampFinal(&l.settings)
	rec, err := newRecord(l.caps.Revision, &l.settings)
	if err != nil {
		return err
	}
	l.record = rec
	l.stage = StageFinalized
	slogger().Info("settings: finalized", "revision", l.caps.Revision, "hash", rec.Hash())
	return nil
}

// Resolve runs every stage from Uninitialized and returns the record.
func (l *Loader) Resolve(src Source) (*Record, error) {
	if err := l.Init(src); err != nil {
		return nil, err
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if err := l.Override(); err != nil {
		return nil, err
	}
	if err := l.Finalize(); err != nil {
		return nil, err
	}
	return l.record, nil
}

// Reread discards the current record and repeats the whole pipeline with a
// fresh source and the same capabilities. The previous record is not
// modified; callers holding it keep a consistent snapshot. On failure the
// loader is left Uninitialized.
func (l *Loader) Reread(src Source) (*Record, error) {
	l.stage = StageUninitialized
	l.record = nil
	return l.Resolve(src)
}

// Record returns the frozen record.
func (l *Loader) Record() (*Record, error) {
	if l.stage != StageFinalized {
		return nil, fmt.Errorf("%w: stage %s", ErrNotReady, l.stage)
	}
	return l.record, nil
}

// Query returns the current value of a setting. Before finalization it
// reflects the in-progress record.
func (l *Loader) Query(name string) (any, error) {
	if l.stage == StageUninitialized {
		return nil, ErrNotReady
	}
	return l.settings.Get(name)
}

// Set applies a raw override during EarlyInit. A finalized record is
// frozen; later changes need Reread.
func (l *Loader) Set(name string, value any) error {
	switch l.stage {
	case StageEarlyInit:
	case StageFinalized:
		return fmt.Errorf("%w: set %s", ErrFrozen, name)
	default:
		return fmt.Errorf("%w: set %s in stage %s", ErrStage, name, l.stage)
	}
	canonical, err := l.settings.set(name, value)
	if err != nil {
		return err
	}
	l.overridden[canonical] = struct{}{}
	return nil
}

// Close unregisters the loader from introspection.
func (l *Loader) Close() {
	if l.registered {
		l.opts.registrar.UnregisterComponent(l.opts.component)
		l.registered = false
	}
}
