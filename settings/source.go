package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ErrStoreInit is returned when the raw-override store cannot be read. It
// aborts device bring-up.
var ErrStoreInit = errors.New("settings: cannot initialize override store")

// Source supplies raw overrides keyed by setting name. Values are typed as
// decoded: numbers, booleans or strings (enum names, hex literals).
type Source interface {
	Load() (map[string]any, error)
}

// MapSource is an in-memory Source.
type MapSource map[string]any

// Load returns a copy of m.
func (m MapSource) Load() (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

// EmptySource supplies no overrides.
type EmptySource struct{}

// Load returns an empty map.
func (EmptySource) Load() (map[string]any, error) { return map[string]any{}, nil }

// YAMLFile reads overrides from a YAML mapping.
type YAMLFile string

// Load parses the file. A missing file is an error.
func (f YAMLFile) Load() (map[string]any, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", string(f), err)
	}
	return out, nil
}

// JSONCFile reads overrides from a JSON object that may carry comments and
// trailing commas.
type JSONCFile string

// Load parses the file. A missing file is an error.
func (f JSONCFile) Load() (map[string]any, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(jsonc.ToJSON(data), &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", string(f), err)
	}
	return out, nil
}

// FileSource picks YAMLFile or JSONCFile by extension.
func FileSource(path string) Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return JSONCFile(path)
	default:
		return YAMLFile(path)
	}
}

// applyRaw writes raw overrides into s in key order. Unknown and malformed
// keys are skipped. It returns the canonical names that were applied.
func applyRaw(s *Settings, raw map[string]any) map[string]struct{} {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	applied := make(map[string]struct{}, len(raw))
	for _, key := range keys {
		name, err := s.set(key, raw[key])
		if err != nil {
			slogger().Debug("settings: ignoring raw override", "key", key, "err", err)
			continue
		}
		applied[name] = struct{}{}
	}
	return applied
}
