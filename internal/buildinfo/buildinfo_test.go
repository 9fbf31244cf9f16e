package buildinfo_test

import (
	"testing"

	"podboost/internal/buildinfo"
)

func TestVersionNonEmpty(t *testing.T) {
	if buildinfo.Version() == "" {
		t.Fatal("expected a version string")
	}
}
