package publish

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIsEligible covers never-published, published-at-another-version and
// already-published packages.
func TestIsEligible(t *testing.T) {
	tests := []struct {
		name      string
		published map[string][]string
		pkg       string
		version   string
		want      bool
		wantViews []string
	}{
		{
			name:      "never published",
			published: map[string][]string{},
			pkg:       "pkg",
			version:   "1.0.0",
			want:      true,
			wantViews: []string{"pkg"},
		},
		{
			name:      "new version of existing package",
			published: map[string][]string{"pkg": {"1.0.0"}},
			pkg:       "pkg",
			version:   "1.1.0",
			want:      true,
			wantViews: []string{"pkg", "pkg@1.1.0"},
		},
		{
			name:      "version already published",
			published: map[string][]string{"pkg": {"1.0.0", "1.1.0"}},
			pkg:       "pkg",
			version:   "1.0.0",
			want:      false,
			wantViews: []string{"pkg", "pkg@1.0.0"},
		},
		{
			name:      "scoped package already published",
			published: map[string][]string{"@nearform/package": {"2.0.0"}},
			pkg:       "@nearform/package",
			version:   "2.0.0",
			want:      false,
			wantViews: []string{"@nearform/package", "@nearform/package@2.0.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &fakeRegistry{published: tt.published}
			gate := NewGate(reg, nil)

			got, err := gate.IsEligible(context.Background(), tt.pkg, tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantViews, reg.views)
		})
	}
}

// TestIsEligible_ErrorPropagates verifies that query failures are not
// mistaken for "not published".
func TestIsEligible_ErrorPropagates(t *testing.T) {
	reg := &fakeRegistry{viewErr: errBoom}
	gate := NewGate(reg, nil)

	eligible, err := gate.IsEligible(context.Background(), "pkg", "1.0.0")
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, eligible)
}
