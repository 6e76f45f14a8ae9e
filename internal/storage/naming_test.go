package storage

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

var hexName = regexp.MustCompile(`^[0-9a-f]{32}(\.[A-Za-z0-9]+)?$`)

func TestNewFilename_KeepsOnlyExtension(t *testing.T) {
	tests := []struct {
		original string
		wantExt  string
	}{
		{"photo.png", ".png"},
		{"My Secret Holiday.JPG", ".JPG"},
		{"archive.tar.gz", ".gz"},
		{"noext", ""},
		{"../../etc/passwd.webp", ".webp"},
	}

	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			got, err := NewFilename(tt.original)
			if err != nil {
				t.Fatalf("NewFilename: %v", err)
			}
			if !strings.HasSuffix(got, tt.wantExt) {
				t.Fatalf("%q: want ext %q, got %q", tt.original, tt.wantExt, got)
			}
			if !hexName.MatchString(got) {
				t.Fatalf("%q: name %q is not 32 hex chars + ext", tt.original, got)
			}
		})
	}
}

func TestNewFilename_FreshEveryCall(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		n, err := NewFilename("same.png")
		if err != nil {
			t.Fatalf("NewFilename: %v", err)
		}
		if seen[n] {
			t.Fatalf("duplicate name %q after %d calls", n, i)
		}
		seen[n] = true
	}
}

func TestNewFilename_RandomFailure(t *testing.T) {
	orig := randRead
	defer func() { randRead = orig }()
	randRead = func(b []byte) (int, error) { return 0, errors.New("no entropy") }

	if _, err := NewFilename("a.png"); err == nil {
		t.Fatalf("expected error")
	}
}
