package booking

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const referencePrefix = "BK"

var referenceRegex = regexp.MustCompile(`^[A-Za-z0-9_\-]{3,40}$`)

// Reference is the externally visible booking identifier.
type Reference struct {
	value string
}

func NewReference() Reference {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return Reference{value: referencePrefix + strings.ToUpper(raw[:10])}
}

func ParseReference(s string) (Reference, error) {
	s = strings.TrimSpace(s)
	if !referenceRegex.MatchString(s) {
		return Reference{}, ErrInvalidReference
	}
	return Reference{value: s}, nil
}

func (r Reference) String() string { return r.value }
func (r Reference) IsZero() bool   { return r.value == "" }

const dateLayout = "2006-01-02"

// Stay is a check-in/check-out pair truncated to calendar dates.
type Stay struct {
	checkIn  time.Time
	checkOut time.Time
}

func NewStay(checkIn, checkOut time.Time) (Stay, error) {
	in := truncateDate(checkIn)
	out := truncateDate(checkOut)
	if !out.After(in) {
		return Stay{}, ErrInvalidStay
	}
	return Stay{checkIn: in, checkOut: out}, nil
}

func ParseStay(checkIn, checkOut string) (Stay, error) {
	in, err := parseDate(checkIn)
	if err != nil {
		return Stay{}, ErrInvalidStay
	}
	out, err := parseDate(checkOut)
	if err != nil {
		return Stay{}, ErrInvalidStay
	}
	return NewStay(in, out)
}

func (s Stay) CheckIn() time.Time  { return s.checkIn }
func (s Stay) CheckOut() time.Time { return s.checkOut }

func (s Stay) Nights() int {
	return int(s.checkOut.Sub(s.checkIn).Hours() / 24)
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// accepts plain dates and RFC 3339 timestamps
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// MinorUnits converts a major-unit amount (rupees) into gateway minor units (paise).
func MinorUnits(major float64) (int64, error) {
	if major < 0 || math.IsNaN(major) || math.IsInf(major, 0) {
		return 0, ErrInvalidAmount
	}
	return int64(math.Round(major * 100)), nil
}

func MajorUnits(minor int64) float64 {
	return float64(minor) / 100
}
