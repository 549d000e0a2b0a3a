package settings

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Field table errors.
var (
	// ErrUnknownField is returned for a name that matches no setting.
	ErrUnknownField = errors.New("settings: unknown field")

	// ErrFieldType is returned when a value cannot be converted to the
	// field's type.
	ErrFieldType = errors.New("settings: value has wrong type for field")
)

// Kind is the value class of a field.
type Kind uint8

// Field kinds.
const (
	KindUint Kind = iota
	KindInt
	KindBool
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Field describes one named setting.
type Field struct {
	Name string
	Kind Kind

	// Values lists the accepted names of an enum field, indexed by value.
	Values []string

	index int
}

type fieldTable struct {
	fields []Field
	byName map[string]int // keyed by folded name
}

var (
	tableOnce sync.Once
	table     fieldTable
)

// foldKey canonicalizes a setting name for case-insensitive matching.
// A Caser carries state, so each call gets its own.
func foldKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func fields() *fieldTable {
	tableOnce.Do(func() {
		t := reflect.TypeFor[Settings]()
		table.byName = make(map[string]int, t.NumField())
		for i := range t.NumField() {
			sf := t.Field(i)
			name := sf.Tag.Get("setting")
			if name == "" {
				continue
			}
			f := Field{Name: name, index: i}
			if names, ok := enumNames[sf.Type]; ok {
				f.Kind = KindEnum
				f.Values = names
			} else {
				switch sf.Type.Kind() {
				case reflect.Uint32:
					f.Kind = KindUint
				case reflect.Int32:
					f.Kind = KindInt
				case reflect.Bool:
					f.Kind = KindBool
				default:
					panic(fmt.Sprintf("settings: field %s has unsupported type %s", sf.Name, sf.Type))
				}
			}
			table.byName[foldKey(name)] = len(table.fields)
			table.fields = append(table.fields, f)
		}
	})
	return &table
}

func (t *fieldTable) lookup(name string) (*Field, error) {
	i, ok := t.byName[foldKey(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return &t.fields[i], nil
}

// Fields returns every setting in declaration order.
func Fields() []Field {
	return append([]Field(nil), fields().fields...)
}

// FieldNames returns the canonical setting names, sorted.
func FieldNames() []string {
	fs := fields().fields
	names := make([]string, len(fs))
	for i := range fs {
		names[i] = fs[i].Name
	}
	sort.Strings(names)
	return names
}

// CanonicalName returns the declared spelling of a setting name, matched
// case-insensitively.
func CanonicalName(name string) (string, error) {
	f, err := fields().lookup(name)
	if err != nil {
		return "", err
	}
	return f.Name, nil
}

// Get returns the value of the named setting: uint32, int32, bool, or the
// field's enum type.
func (s *Settings) Get(name string) (any, error) {
	f, err := fields().lookup(name)
	if err != nil {
		return nil, err
	}
	return reflect.ValueOf(s).Elem().Field(f.index).Interface(), nil
}

// Map returns every setting keyed by canonical name. Enum values are
// rendered by name.
func (s *Settings) Map() map[string]any {
	v := reflect.ValueOf(s).Elem()
	out := make(map[string]any, len(fields().fields))
	for _, f := range fields().fields {
		fv := v.Field(f.index)
		if f.Kind == KindEnum {
			out[f.Name] = fv.Interface().(fmt.Stringer).String()
			continue
		}
		out[f.Name] = fv.Interface()
	}
	return out
}

// set converts value to the named field's type and stores it. It returns the
// canonical field name.
func (s *Settings) set(name string, value any) (string, error) {
	f, err := fields().lookup(name)
	if err != nil {
		return "", err
	}
	fv := reflect.ValueOf(s).Elem().Field(f.index)
	switch f.Kind {
	case KindBool:
		b, err := toBool(value)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrFieldType, f.Name, err)
		}
		fv.SetBool(b)
	case KindUint:
		u, err := toUint(value, math.MaxUint32)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrFieldType, f.Name, err)
		}
		fv.SetUint(u)
	case KindInt:
		i, err := toInt(value, math.MinInt32, math.MaxInt32)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrFieldType, f.Name, err)
		}
		fv.SetInt(i)
	case KindEnum:
		u, err := toEnum(value, f.Values)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrFieldType, f.Name, err)
		}
		fv.SetUint(u)
	}
	return f.Name, nil
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(x))
	case int:
		return x != 0, nil
	case int64:
		return x != 0, nil
	case uint64:
		return x != 0, nil
	case float64:
		return x != 0, nil
	}
	return false, fmt.Errorf("cannot use %T as bool", v)
}

func toInt(v any, lo, hi int64) (int64, error) {
	var i int64
	switch x := v.(type) {
	case int:
		i = int64(x)
	case int32:
		i = int64(x)
	case int64:
		i = x
	case uint32:
		i = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%d out of range", x)
		}
		i = int64(x)
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		if x < math.MinInt64 || x > math.MaxInt64 {
			return 0, fmt.Errorf("%v out of range", x)
		}
		i = int64(x)
	case string:
		p, err := strconv.ParseInt(strings.TrimSpace(x), 0, 64)
		if err != nil {
			return 0, err
		}
		i = p
	default:
		return 0, fmt.Errorf("cannot use %T as integer", v)
	}
	if i < lo || i > hi {
		return 0, fmt.Errorf("%d out of range [%d, %d]", i, lo, hi)
	}
	return i, nil
}

func toUint(v any, hi uint64) (uint64, error) {
	if u, ok := v.(uint64); ok {
		if u > hi {
			return 0, fmt.Errorf("%d out of range", u)
		}
		return u, nil
	}
	if s, ok := v.(string); ok {
		u, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
		if err != nil {
			return 0, err
		}
		if u > hi {
			return 0, fmt.Errorf("%d out of range", u)
		}
		return u, nil
	}
	i, err := toInt(v, 0, int64(hi))
	if err != nil {
		return 0, err
	}
	return uint64(i), nil
}

func toEnum(v any, names []string) (uint64, error) {
	if s, ok := v.(string); ok {
		want := foldKey(s)
		for i, n := range names {
			if foldKey(n) == want {
				return uint64(i), nil
			}
		}
		// Numeric strings fall through to the integer path.
		if _, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32); err != nil {
			return 0, fmt.Errorf("%q is not one of %v", s, names)
		}
	}
	if st, ok := v.(fmt.Stringer); ok {
		return toEnum(st.String(), names)
	}
	u, err := toUint(v, uint64(len(names)-1))
	if err != nil {
		return 0, err
	}
	return u, nil
}
