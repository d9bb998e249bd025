package checksum

import (
	"crypto/md5" //nolint:gosec // MD5 is the agreed integrity format (md5sum -c on the receiving side).
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrFileUnreadable marks digest failures caused by a source file that
// vanished or cannot be read. A missing digest silently corrupts the
// manifest, so these errors are always propagated.
var ErrFileUnreadable = errors.New("file unreadable")

// SumFile computes the lowercase hex MD5 digest of the file at path.
// The file is streamed in chunks, so arbitrarily large files are fine.
func SumFile(path string) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrFileUnreadable, path, err)
	}

	defer func() {
		_ = f.Close()
	}()

	hasher := md5.New() //nolint:gosec // See note on the import.
	if _, err = io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrFileUnreadable, path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
