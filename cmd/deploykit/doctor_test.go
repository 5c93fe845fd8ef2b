package main

import "testing"

func TestVersionAtLeast(t *testing.T) {
	tests := []struct {
		name    string
		found   string
		minimum string
		want    bool
	}{
		{
			name:    "exactly the minimum",
			found:   "2.45.0",
			minimum: "2.45.0",
			want:    true,
		},
		{
			name:    "patch above",
			found:   "2.45.1",
			minimum: "2.45.0",
			want:    true,
		},
		{
			name:    "minor above",
			found:   "2.46.0",
			minimum: "2.45.0",
			want:    true,
		},
		{
			name:    "major above",
			found:   "3.0.0",
			minimum: "2.45.0",
			want:    true,
		},
		{
			name:    "patch below",
			found:   "2.44.9",
			minimum: "2.45.0",
			want:    false,
		},
		{
			name:    "major below",
			found:   "1.99.0",
			minimum: "2.45.0",
			want:    false,
		},
		{
			name:    "garbage found",
			found:   "not-a-version",
			minimum: "2.45.0",
			want:    false,
		},
		{
			name:    "garbage minimum",
			found:   "2.45.0",
			minimum: "???",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := versionAtLeast(tt.found, tt.minimum)
			if got != tt.want {
				t.Errorf("versionAtLeast(%q, %q) = %v, want %v", tt.found, tt.minimum, got, tt.want)
			}
		})
	}
}
