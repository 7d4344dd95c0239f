package storage

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newID returns a UUIDv7. The first 48 bits hold the Unix time in
// milliseconds, so ids sort by creation time and CreatedAt can read it back.
func newID() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return u.String(), nil
}

// CreatedAt returns the creation instant encoded in a task id. It accepts
// UUIDv7 ids and legacy ids made only of digits (Unix milliseconds). Other
// ids carry no time and report false.
func CreatedAt(id string) (time.Time, bool) {
	if id != "" && strings.Trim(id, "0123456789") == "" {
		ms, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(ms), true
	}

	u, err := uuid.Parse(id)
	if err != nil || u.Version() != 7 {
		return time.Time{}, false
	}
	var b [8]byte
	copy(b[2:], u[:6])
	return time.UnixMilli(int64(binary.BigEndian.Uint64(b[:]))), true
}
