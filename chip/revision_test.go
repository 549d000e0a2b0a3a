package chip

import (
	"errors"
	"testing"
)

func TestRevisionString(t *testing.T) {
	tests := []struct {
		rev  Revision
		want string
	}{
		{Polaris10, "Polaris10"},
		{Vega20, "Vega20"},
		{Navi21, "Navi21"},
		{Phoenix1, "Phoenix1"},
		{RevisionUnknown, "Revision(0)"},
		{Revision(999), "Revision(999)"},
	}
	for _, tt := range tests {
		if got := tt.rev.String(); got != tt.want {
			t.Errorf("Revision(%d).String() = %q, want %q", uint32(tt.rev), got, tt.want)
		}
	}
}

func TestParseRevision(t *testing.T) {
	tests := []struct {
		in      string
		want    Revision
		wantErr bool
	}{
		{"Navi10", Navi10, false},
		{"navi33", Navi33, false},
		{"  RAVEN2 ", Raven2, false},
		{"Navi99", RevisionUnknown, true},
		{"", RevisionUnknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRevision(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedRevision) {
					t.Fatalf("ParseRevision(%q) error = %v, want ErrUnsupportedRevision", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRevision(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseRevision(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGfxLevelGeneration(t *testing.T) {
	tests := []struct {
		level    GfxLevel
		gen      Generation
		plus10   bool
		plus103  bool
		levelStr string
	}{
		{GfxIp8, Gfx8, false, false, "GfxIp8"},
		{GfxIp9, Gfx9, false, false, "GfxIp9"},
		{GfxIp10_1, Gfx10, true, false, "GfxIp10_1"},
		{GfxIp10_3, Gfx10, true, true, "GfxIp10_3"},
		{GfxIp11_0, Gfx11, true, true, "GfxIp11_0"},
		{GfxLevelNone, GenerationNone, false, false, "None"},
	}
	for _, tt := range tests {
		t.Run(tt.levelStr, func(t *testing.T) {
			if got := tt.level.Generation(); got != tt.gen {
				t.Errorf("Generation() = %v, want %v", got, tt.gen)
			}
			if got := tt.level.IsGfx10Plus(); got != tt.plus10 {
				t.Errorf("IsGfx10Plus() = %v, want %v", got, tt.plus10)
			}
			if got := tt.level.IsGfx103Plus(); got != tt.plus103 {
				t.Errorf("IsGfx103Plus() = %v, want %v", got, tt.plus103)
			}
			if got := tt.level.String(); got != tt.levelStr {
				t.Errorf("String() = %q, want %q", got, tt.levelStr)
			}
		})
	}
}
