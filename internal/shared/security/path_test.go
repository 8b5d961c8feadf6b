package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveWithinValidPath(t *testing.T) {
	base := t.TempDir()

	resolved, err := ResolveWithin(base, filepath.Join("sub", "scan.json"))
	if err != nil {
		t.Fatalf("ResolveWithin returned error: %v", err)
	}
	if !strings.HasPrefix(resolved, base) {
		t.Fatalf("expected resolved path %s to stay within base %s", resolved, base)
	}

	// ensure path is actually usable
	if err := os.MkdirAll(filepath.Dir(resolved), 0o700); err != nil {
		t.Fatalf("failed to create parent dirs: %v", err)
	}
	if err := os.WriteFile(resolved, []byte("ok"), 0o600); err != nil {
		t.Fatalf("failed to write resolved file: %v", err)
	}
}

func TestResolveWithinBlocksEscape(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name  string
		elems []string
	}{
		{"single escape", []string{"..", "etc", "passwd"}},
		{"double escape", []string{"..", ".."}},
		{"relative escape", []string{"a", "..", "..", "etc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveWithin(base, tt.elems...)
			if err == nil {
				t.Fatal("expected path escape error")
			}
			if !strings.Contains(err.Error(), "escapes base directory") {
				t.Errorf("expected escape error, got: %v", err)
			}
		})
	}
}

func TestResolveWithinEmptyBase(t *testing.T) {
	_, err := ResolveWithin("", "some", "path")
	if err == nil {
		t.Fatal("expected error for empty base directory")
	}
}

func TestResolveWithinSafeInternalTraversal(t *testing.T) {
	base := t.TempDir()

	// a/b/../c resolves to a/c within base, which is fine
	resolved, err := ResolveWithin(base, "a", "b", "..", "c")
	if err != nil {
		t.Fatalf("unexpected error for safe traversal: %v", err)
	}
	if expected := filepath.Join(base, "a", "c"); resolved != expected {
		t.Errorf("expected %s, got %s", expected, resolved)
	}
}

func TestResolveWithinAbsoluteElement(t *testing.T) {
	base := t.TempDir()

	// Absolute elements are joined under base, not honored as-is.
	resolved, err := ResolveWithin(base, "/etc/passwd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(resolved, base) {
		t.Errorf("resolved path %s should be within base %s", resolved, base)
	}
}

func TestResolveWithinNoElements(t *testing.T) {
	base := t.TempDir()

	resolved, err := ResolveWithin(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != base {
		t.Errorf("expected %s, got %s", base, resolved)
	}
}
