package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "touristid/pkg/domain-errors"
)

// TestParseSessionID validates the parsing invariant at the token boundary:
// session IDs must be valid, non-empty, non-nil UUIDs.
func TestParseSessionID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty string", "", true},
		{"invalid format", "not-a-uuid", true},
		{"nil UUID", uuid.Nil.String(), true},
		{"path traversal", "../../../etc/passwd", true},
		{"oversized input", strings.Repeat("a", 1000), true},
		{"valid lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
		{"valid uppercase", "550E8400-E29B-41D4-A716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSessionID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
		})
	}

	t.Run("round trips through String", func(t *testing.T) {
		id := NewSessionID()
		parsed, err := ParseSessionID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
		assert.False(t, parsed.IsNil())
	})
}

func TestParseRegistrationID(t *testing.T) {
	t.Run("round trips a generated ID", func(t *testing.T) {
		id := NewRegistrationID()
		parsed, err := ParseRegistrationID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseRegistrationID("not-a-ulid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseRegistrationID("")
		require.Error(t, err)
	})
}

func TestParseTouristID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"TST-2024-ABC123XYZ", false},
		{"TST-2024-000000000", false},
		{"TST-2024-abc123xyz", true},
		{"TST-2024-ABC123XY", true},
		{"TST-2024-ABC123XYZ0", true},
		{"TST-2023-ABC123XYZ", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseTouristID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
