package queries

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"hotel-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

const cursorPrefix = "bk1."

var errMalformedCursor = errs.New("malformed cursor")

// EncodeAfterCursor points just past the row (createdAt, id) in newest-first
// order. Microseconds match Postgres timestamp precision.
func EncodeAfterCursor(createdAt time.Time, id uuid.UUID) string {
	raw := cursorPrefix + strconv.FormatInt(createdAt.UnixMicro(), 36) + "." + id.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeAfterCursor(cursor string) (time.Time, uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Mark(errs.Wrap(err, "cursor is not base64"), errMalformedCursor)
	}
	body, ok := strings.CutPrefix(string(raw), cursorPrefix)
	if !ok {
		return time.Time{}, uuid.Nil, errs.Wrap(errMalformedCursor, "unknown cursor version")
	}
	micros, rawID, ok := strings.Cut(body, ".")
	if !ok {
		return time.Time{}, uuid.Nil, errs.Wrap(errMalformedCursor, "cursor has no id")
	}
	ts, err := strconv.ParseInt(micros, 36, 64)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Mark(errs.Wrap(err, "cursor timestamp"), errMalformedCursor)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Mark(errs.Wrap(err, "cursor id"), errMalformedCursor)
	}
	return time.UnixMicro(ts).UTC(), id, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, MaxListLimit)
}
