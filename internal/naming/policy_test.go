package naming

import (
	"errors"
	"testing"
)

// fakeIndex reports a fixed set of taken names.
type fakeIndex map[string]bool

func (f fakeIndex) Has(name string) bool { return f[name] }

func TestValidate(t *testing.T) {
	idx := fakeIndex{"alpha": true}
	p := NewPolicy(idx)

	tests := []struct {
		raw     string
		want    string
		wantErr error
	}{
		{raw: "greeting", want: "greeting"},
		{raw: "  Greeting \n", want: "greeting"},
		{raw: "GREETING", want: "greeting"},
		{raw: "alpha", wantErr: ErrNameTaken},
		{raw: "ALPHA", wantErr: ErrNameTaken},
		{raw: " Alpha ", wantErr: ErrNameTaken},
		{raw: "", wantErr: ErrEmptyName},
		{raw: "   ", wantErr: ErrEmptyName},
		{raw: "\t\n", wantErr: ErrEmptyName},
		{raw: "my_voice", wantErr: ErrInvalidName},
		{raw: "a/b", wantErr: ErrInvalidName},
		{raw: `a\b`, wantErr: ErrInvalidName},
	}

	for _, tt := range tests {
		got, err := p.Validate(tt.raw)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("Validate(%q): %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Validate(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Hello World "); got != "hello world" {
		t.Errorf("Normalize = %q", got)
	}
}
