package inventory

import (
	"errors"
	"strings"
)

var (
	ErrUnknownRoomType = errors.New("unknown room type")
	ErrNegativeCount   = errors.New("room count must not be negative")
)

type RoomType string

const (
	RoomStandard RoomType = "standard"
	RoomDeluxe   RoomType = "deluxe"
	RoomSuite    RoomType = "suite"
)

var allRoomTypes = []RoomType{RoomStandard, RoomDeluxe, RoomSuite}

func AllRoomTypes() []RoomType {
	out := make([]RoomType, len(allRoomTypes))
	copy(out, allRoomTypes)
	return out
}

func (r RoomType) String() string {
	return string(r)
}

func (r RoomType) IsValid() bool {
	switch r {
	case RoomStandard, RoomDeluxe, RoomSuite:
		return true
	default:
		return false
	}
}

func ParseRoomType(s string) (RoomType, error) {
	rt := RoomType(strings.ToLower(strings.TrimSpace(s)))
	if !rt.IsValid() {
		return "", ErrUnknownRoomType
	}
	return rt, nil
}

// Counts is the desired availability per room type, used for deploy-time
// initialization and admin adjustments.
type Counts map[RoomType]int

func NewCounts(raw map[string]int) (Counts, error) {
	counts := make(Counts, len(raw))
	for name, n := range raw {
		rt, err := ParseRoomType(name)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, ErrNegativeCount
		}
		counts[rt] = n
	}
	return counts, nil
}

// Complete reports whether every known room type has a count.
func (c Counts) Complete() bool {
	for _, rt := range allRoomTypes {
		if _, ok := c[rt]; !ok {
			return false
		}
	}
	return true
}
