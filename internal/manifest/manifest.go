package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ekvall/seqdeliver/internal/checksum"
)

const (
	// ListSuffix is the extension of the plain file list half of a manifest pair.
	ListSuffix = ".lst"
	// DigestSuffix is the extension of the checksum half of a manifest pair.
	DigestSuffix = ".md5"

	// fileMode is used for emitted manifest files.
	fileMode os.FileMode = 0o644

	// tmpSuffix marks half-written manifest files before they are renamed
	// into place.
	tmpSuffix = ".tmp"
)

// Builder writes manifest pairs for a set of files under a common root.
type Builder struct {
	pool *checksum.Pool
}

// NewBuilder returns a builder that digests files through the provided pool.
func NewBuilder(pool *checksum.Pool) *Builder {
	if pool == nil {
		pool = checksum.NewPool(0)
	}

	return &Builder{pool: pool}
}

// ListPath returns the path of the .lst file for a scope inside dir.
func ListPath(dir, scope string) string {
	return filepath.Join(dir, scope+ListSuffix)
}

// DigestPath returns the path of the .md5 file for a scope inside dir.
func DigestPath(dir, scope string) string {
	return filepath.Join(dir, scope+DigestSuffix)
}

// Write emits <scope>.lst and <scope>.md5 into outDir for the given files.
// Files are slash-separated paths relative to root, listed in lexicographic
// order so repeated runs over unchanged data are byte-identical. Nothing is
// written until every digest has resolved: a partial manifest is worse than
// no manifest.
func (b *Builder) Write(ctx context.Context, root, outDir, scope string, files []string) error {
	relative := make([]string, 0, len(files))
	absolute := make([]string, 0, len(files))

	for _, file := range files {
		rel := filepath.ToSlash(file)
		relative = append(relative, rel)
		absolute = append(absolute, filepath.Join(root, filepath.FromSlash(rel)))
	}

	sort.Strings(relative)

	digests, err := b.pool.SumAll(ctx, absolute)
	if err != nil {
		return fmt.Errorf("digest files for scope %s: %w", scope, err)
	}

	var listBuilder, digestBuilder strings.Builder

	for _, rel := range relative {
		digest, ok := digests[filepath.Join(root, filepath.FromSlash(rel))]
		if !ok {
			return fmt.Errorf("digest missing for %s in scope %s", rel, scope)
		}

		listBuilder.WriteString(rel)
		listBuilder.WriteString("\n")

		digestBuilder.WriteString(digest)
		digestBuilder.WriteString("  ")
		digestBuilder.WriteString(rel)
		digestBuilder.WriteString("\n")
	}

	return commitPair(outDir, scope, []byte(listBuilder.String()), []byte(digestBuilder.String()))
}

// commitPair writes both halves to temporary files and renames them into
// place only once both writes succeeded. A crash mid-write must never leave
// a truncated manifest, or a .lst without its .md5, at the final paths.
func commitPair(outDir, scope string, list, digest []byte) error {
	listTmp := ListPath(outDir, scope) + tmpSuffix
	digestTmp := DigestPath(outDir, scope) + tmpSuffix

	if err := os.WriteFile(listTmp, list, fileMode); err != nil {
		return fmt.Errorf("write %s%s: %w", scope, ListSuffix, err)
	}

	if err := os.WriteFile(digestTmp, digest, fileMode); err != nil {
		_ = os.Remove(listTmp)
		return fmt.Errorf("write %s%s: %w", scope, DigestSuffix, err)
	}

	if err := os.Rename(listTmp, ListPath(outDir, scope)); err != nil {
		_ = os.Remove(listTmp)
		_ = os.Remove(digestTmp)

		return fmt.Errorf("commit %s%s: %w", scope, ListSuffix, err)
	}

	if err := os.Rename(digestTmp, DigestPath(outDir, scope)); err != nil {
		_ = os.Remove(digestTmp)
		return fmt.Errorf("commit %s%s: %w", scope, DigestSuffix, err)
	}

	return nil
}
