package invite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teaminbox/internal/model"
)

func TestResolveToken(t *testing.T) {
	tests := []struct {
		name      string
		actionURL string
		relatedID string
		want      string
		wantErr   bool
	}{
		{"url wins", "https://app.example.com/invitation/accept/abc123", "xyz", "abc123", false},
		{"relative url", "/invitation/accept/abc123/", "xyz", "abc123", false},
		{"empty url falls back", "", "xyz", "xyz", false},
		{"non-matching url falls back", "https://app.example.com/teams/7", "xyz", "xyz", false},
		{"empty segment falls back", "https://app.example.com/invitation/accept/", "xyz", "xyz", false},
		{"escaped segment is decoded", "https://app.example.com/invitation/accept/abc%20x", "xyz", "abc x", false},
		{"malformed escape kept", "https://app.example.com/invitation/accept/abc%zz", "xyz", "abc%zz", false},
		{"both empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveToken(model.Notification{ActionURL: tt.actionURL, RelatedID: tt.relatedID})
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoToken)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
