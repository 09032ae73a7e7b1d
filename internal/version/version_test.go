package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	t.Parallel()

	s := String()
	if !strings.HasPrefix(s, "expensa ") {
		t.Errorf("version string %q should start with the binary name", s)
	}
	if !strings.Contains(s, Version) {
		t.Errorf("version string %q should contain %q", s, Version)
	}
}
