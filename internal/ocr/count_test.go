package ocr

import (
	"errors"
	"testing"
)

func TestParseStackCount(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    int
		wantErr bool
	}{
		{"plain", "12", 12, false},
		{"prefixed", "x3\n", 3, false},
		{"upper prefix", "X45", 45, false},
		{"surrounding noise", " 4 .", 4, false},
		{"first run wins", "7 8", 7, false},
		{"leading zero", "05", 5, false},
		{"no digits", "x", 0, true},
		{"empty", "", 0, true},
		{"zero", "0", 0, true},
		{"too large", "123456", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStackCount(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrNoCount) {
					t.Errorf("ParseStackCount(%q): got err %v, want ErrNoCount", tt.text, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStackCount(%q) failed: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("ParseStackCount(%q): got %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestNewReader_DefaultLanguage(t *testing.T) {
	if r := NewReader(""); r.Language != "eng" {
		t.Errorf("language: got %q, want eng", r.Language)
	}
	if r := NewReader("deu"); r.Language != "deu" {
		t.Errorf("language: got %q, want deu", r.Language)
	}
}
