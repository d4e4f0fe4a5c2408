package version

import "testing"

func TestGetFullVersion(t *testing.T) {
	defer func(v, c, d string) { Version, GitCommit, BuildDate = v, c, d }(Version, GitCommit, BuildDate)

	tests := []struct {
		name     string
		version  string
		commit   string
		date     string
		expected string
	}{
		{"dev build", "dev", "unknown", "unknown", "dev"},
		{"release", "1.2.0", "0123456789abcdef", "2026-01-02", "1.2.0 (0123456, built 2026-01-02)"},
		{"short commit", "1.2.0", "abc", "today", "1.2.0 (abc, built today)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, GitCommit, BuildDate = tt.version, tt.commit, tt.date
			if got := GetFullVersion(); got != tt.expected {
				t.Errorf("GetFullVersion failed: expected %q, got %q", tt.expected, got)
			}
		})
	}
}
