package util

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// GenerateID generates a time-prefixed unique identifier.
func GenerateID() string {
	suffix := make([]byte, 4)
	rand.Read(suffix)
	return time.Now().UTC().Format("20060102150405") + "-" + hex.EncodeToString(suffix)
}
