package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
)

// randomNameBytes is the entropy behind every generated file name.
const randomNameBytes = 16

// randRead is swapped in tests.
var randRead = rand.Read

// NewFilename returns a fresh random hex name that keeps only the extension of original.
// The client-supplied base name never reaches storage.
func NewFilename(original string) (string, error) {
	b := make([]byte, randomNameBytes)
	if _, err := randRead(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b) + filepath.Ext(original), nil
}
