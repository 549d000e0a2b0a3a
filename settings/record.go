package settings

import "github.com/gogpu/gfxhal/chip"

// Record is a frozen, hashed settings snapshot. It is never modified after
// the loader publishes it, so it is safe to share between goroutines.
type Record struct {
	revision chip.Revision
	settings Settings
	hash     Hash
}

func newRecord(rev chip.Revision, s *Settings) (*Record, error) {
	h, err := HashOf(s)
	if err != nil {
		return nil, err
	}
	return &Record{revision: rev, settings: *s, hash: h}, nil
}

// Revision returns the revision the record was resolved for.
func (r *Record) Revision() chip.Revision { return r.revision }

// Settings returns a copy of the resolved settings.
func (r *Record) Settings() Settings { return r.settings }

// Hash returns the content hash of the record.
func (r *Record) Hash() Hash { return r.hash }

// Get returns the named setting.
func (r *Record) Get(name string) (any, error) {
	return r.settings.Get(name)
}

// Map returns every setting keyed by canonical name.
func (r *Record) Map() map[string]any {
	return r.settings.Map()
}

// Equal reports whether two records hold identical settings.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.revision == o.revision && r.settings == o.settings && r.hash == o.hash
}
