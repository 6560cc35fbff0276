// Package upload issues signed upload URLs and records them in the grant
// ledger.
package upload

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gameshots/uploader/internal/apperr"
)

var (
	separatorRx  = regexp.MustCompile(`[/\\]+`)
	whitespaceRx = regexp.MustCompile(`\s+`)
	disallowedRx = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

	digitsRx  = regexp.MustCompile(`^[0-9]+$`)
	segmentRx = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// NamespaceValidator decides whether a trimmed, non-empty namespace id may be
// used as a key path segment.
type NamespaceValidator func(id string) error

// DigitsOnly accepts ids made only of ASCII digits.
func DigitsOnly(id string) error {
	if !digitsRx.MatchString(id) {
		return apperr.Validation("gameId", "gameId must contain only digits")
	}
	return nil
}

// PathSegment accepts up to 64 letters, digits, underscores and hyphens.
func PathSegment(id string) error {
	if !segmentRx.MatchString(id) {
		return apperr.Validation("gameId", "gameId may only contain letters, digits, '_' and '-'")
	}
	return nil
}

// KeyDeriver builds storage keys of the form
// <prefix>/<namespaceId>/<unixMillis>-<hex>-<sanitizedName>.
type KeyDeriver struct {
	prefix   string
	validate NamespaceValidator
	now      func() time.Time
	random   io.Reader
}

// NewKeyDeriver creates a KeyDeriver. A nil validator defaults to DigitsOnly.
func NewKeyDeriver(prefix string, validate NamespaceValidator) *KeyDeriver {
	if validate == nil {
		validate = DigitsOnly
	}
	return &KeyDeriver{
		prefix:   strings.Trim(prefix, "/"),
		validate: validate,
		now:      time.Now,
		random:   rand.Reader,
	}
}

// ValidateNamespace trims id and checks it against the validator.
func (d *KeyDeriver) ValidateNamespace(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperr.Validation("gameId", "gameId is required")
	}
	if err := d.validate(id); err != nil {
		return "", err
	}
	return id, nil
}

// DeriveKey returns a fresh key for fileName under namespaceID. Two calls never
// return the same key in practice: the millisecond timestamp is followed by 32
// random bits.
func (d *KeyDeriver) DeriveKey(namespaceID, fileName string) (string, error) {
	id, err := d.ValidateNamespace(namespaceID)
	if err != nil {
		return "", err
	}

	token := make([]byte, 4)
	if _, err := io.ReadFull(d.random, token); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}

	name := strconv.FormatInt(d.now().UnixMilli(), 10) + "-" + hex.EncodeToString(token) + "-" + SanitizeFileName(fileName)
	if d.prefix == "" {
		return id + "/" + name, nil
	}
	return d.prefix + "/" + id + "/" + name, nil
}

// SanitizeFileName keeps a readable name that is safe inside a single key
// segment. Names that sanitize to nothing become "file".
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = separatorRx.ReplaceAllString(name, "-")
	name = whitespaceRx.ReplaceAllString(name, "_")
	name = disallowedRx.ReplaceAllString(name, "")
	if strings.Trim(name, ".") == "" {
		return "file"
	}
	return name
}
