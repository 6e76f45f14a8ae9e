// Package storage keeps uploaded avatar images on local disk or in an S3 bucket.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// Store saves avatar bytes and knows the public URL they are served from.
// Deleting a name that is not stored is not an error.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, size int64) error
	Delete(ctx context.Context, name string) error
	URL(name string) string
}

var ErrInvalidName = errors.New("invalid object name")

// checkName rejects anything that is not a single plain file name.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}
