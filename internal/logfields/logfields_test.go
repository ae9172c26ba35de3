package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"File", KeyFile, "index.rst", File("index.rst")},
		{"Source", KeySource, "a.rst", Source("a.rst")},
		{"Destination", KeyDestination, "b.rst", Destination("b.rst")},
		{"Line", KeyLine, "4", Line(4)},
		{"Kind", KeyKind, "image", Kind("image")},
		{"Count", KeyCount, "2", Count(2)},
		{"Backup", KeyBackup, "a.rst.bak", Backup("a.rst.bak")},
		{"Error", KeyError, "boom", Error(errors.New("boom"))},
		{"NilError", KeyError, "", Error(nil)},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}
