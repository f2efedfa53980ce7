package services

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Entity prefixes for persisted ids
const (
	EntityTemplate = "template"
	EntityPaper    = "paper"
)

var entityIDRegex = regexp.MustCompile(`^[a-z]+_\d+_[0-9a-z]{9}$`)

// NewEntityID returns "<entity>_<epoch millis>_<9 base36 chars>"
func NewEntityID(entity string, now time.Time) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = base36Alphabet[rand.IntN(len(base36Alphabet))]
	}
	return fmt.Sprintf("%s_%d_%s", entity, now.UnixMilli(), suffix)
}

// IsEntityID reports whether id has the persisted id shape
func IsEntityID(id string) bool {
	return entityIDRegex.MatchString(id)
}
