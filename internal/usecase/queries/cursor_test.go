package queries_test

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"stock-hold-service/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterCursor_RoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC)
	id := uuid.New()

	gotAt, gotID, err := queries.DecodeAfterCursor(queries.EncodeAfterCursor(at, id))
	require.NoError(t, err)
	assert.True(t, at.Truncate(time.Microsecond).Equal(gotAt))
	assert.Equal(t, id, gotID)
}

func TestDecodeAfterCursor_Rejects(t *testing.T) {
	id := uuid.New()
	cases := map[string]string{
		"empty":           "",
		"not base64":      "%%%",
		"unversioned":     fmt.Sprintf("%d-%s", time.Now().UnixNano(), id),
		"unknown version": base64.URLEncoding.EncodeToString([]byte("v2:1-" + id.String())),
		"bad timestamp":   base64.URLEncoding.EncodeToString([]byte("v1:abc-" + id.String())),
		"bad uuid":        base64.URLEncoding.EncodeToString([]byte("v1:1-not-a-uuid")),
	}
	for name, cursor := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := queries.DecodeAfterCursor(cursor)
			assert.Error(t, err)
		})
	}
}
