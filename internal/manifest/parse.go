package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrManifestMismatch indicates that the .lst and .md5 halves of a manifest
// pair no longer describe the same files. This is a build-time invariant
// violation: a tree in this state must never be handed off.
var ErrManifestMismatch = errors.New("manifest pair file sets diverge")

// errMalformedDigestLine indicates a .md5 line that does not follow the
// "<hexdigest>  <path>" layout.
var errMalformedDigestLine = errors.New("malformed digest line")

// digestLength is the hex length of an MD5 digest.
const digestLength = 32

// Entry pairs a relative file path with its recorded digest.
type Entry struct {
	// Digest is the lowercase hex MD5 digest recorded at build time.
	Digest string
	// Path is the file path relative to the directory the manifest describes.
	Path string
}

// ParseDigests reads a .md5 file into ordered entries.
func ParseDigests(path string) ([]Entry, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open digest file: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	var (
		entries []Entry
		scanner = bufio.NewScanner(f)
		line    int
	)

	for scanner.Scan() {
		line++

		text := strings.TrimRight(scanner.Text(), "\r\n")
		if text == "" {
			continue
		}

		entry, err := parseDigestLine(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}

		entries = append(entries, entry)
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("read digest file: %w", err)
	}

	return entries, nil
}

// parseDigestLine splits "<hexdigest>  <path>" in the md5sum layout.
// An asterisk before the path (md5sum binary mode) is tolerated.
func parseDigestLine(text string) (Entry, error) {
	if len(text) < digestLength+3 {
		return Entry{}, fmt.Errorf("%w: %q", errMalformedDigestLine, text)
	}

	digest := text[:digestLength]
	for _, r := range digest {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return Entry{}, fmt.Errorf("%w: bad digest in %q", errMalformedDigestLine, text)
		}
	}

	rest := text[digestLength:]
	if rest[0] != ' ' {
		return Entry{}, fmt.Errorf("%w: %q", errMalformedDigestLine, text)
	}

	name := strings.TrimPrefix(strings.TrimLeft(rest, " "), "*")
	if name == "" {
		return Entry{}, fmt.Errorf("%w: empty path in %q", errMalformedDigestLine, text)
	}

	return Entry{Digest: digest, Path: name}, nil
}

// ParseList reads a .lst file into the ordered list of relative paths.
func ParseList(path string) ([]string, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read list file: %w", err)
	}

	var paths []string

	for _, line := range strings.Split(string(contents), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		paths = append(paths, line)
	}

	return paths, nil
}

// Check enforces the round-trip invariant on a manifest pair: the .lst line
// sequence and the .md5 path sequence must be identical, same files in the
// same order.
func Check(listPath, digestPath string) error {
	listed, err := ParseList(listPath)
	if err != nil {
		return err
	}

	entries, err := ParseDigests(digestPath)
	if err != nil {
		return err
	}

	if len(listed) != len(entries) {
		return fmt.Errorf("%w: %s has %d entries, %s has %d",
			ErrManifestMismatch, listPath, len(listed), digestPath, len(entries))
	}

	for i, name := range listed {
		if entries[i].Path != name {
			return fmt.Errorf("%w: entry %d: %s lists %q, %s lists %q",
				ErrManifestMismatch, i, listPath, name, digestPath, entries[i].Path)
		}
	}

	return nil
}
