//go:build unit

package queries_test

import (
	"encoding/base64"
	"testing"
	"time"

	"hotel-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterCursor(t *testing.T) {
	t.Run("round trip keeps microseconds", func(t *testing.T) {
		at := time.Date(2026, 12, 24, 18, 5, 9, 123456789, time.FixedZone("IST", 19800))
		id := uuid.New()

		gotAt, gotID, err := queries.DecodeAfterCursor(queries.EncodeAfterCursor(at, id))
		require.NoError(t, err)
		assert.True(t, gotAt.Equal(at.Truncate(time.Microsecond)), "got %s", gotAt)
		assert.Equal(t, id, gotID)
	})

	bad := []struct {
		name   string
		cursor string
	}{
		{name: "empty", cursor: ""},
		{name: "not base64", cursor: "%%%"},
		{name: "foreign prefix", cursor: base64.RawURLEncoding.EncodeToString([]byte("v1:123-" + uuid.NewString()))},
		{name: "no id", cursor: base64.RawURLEncoding.EncodeToString([]byte("bk1.abc"))},
		{name: "bad id", cursor: base64.RawURLEncoding.EncodeToString([]byte("bk1.abc.not-a-uuid"))},
		{name: "bad timestamp", cursor: base64.RawURLEncoding.EncodeToString([]byte("bk1.!!." + uuid.NewString()))},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := queries.DecodeAfterCursor(tt.cursor)
			assert.Error(t, err)
		})
	}
}
