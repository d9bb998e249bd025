package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ekvall/seqdeliver/internal/checksum"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, contents := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	}
}

// TestBuilderWrite checks ordering, line layout and the round-trip invariant
// of a freshly written pair.
func TestBuilderWrite(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.txt":       "bravo\n",
		"a.txt":       "alpha\n",
		"sub/c.txt":   "charlie\n",
		"sub/d/e.txt": "echo\n",
	})

	builder := NewBuilder(checksum.NewPool(2))
	files := []string{"sub/c.txt", "a.txt", "sub/d/e.txt", "b.txt"}

	require.NoError(t, builder.Write(context.Background(), root, root, "Sample1", files))

	listed, err := ParseList(ListPath(root, "Sample1"))
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt", "b.txt", "sub/c.txt", "sub/d/e.txt"}, listed)

	entries, err := ParseDigests(DigestPath(root, "Sample1"))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	for i, entry := range entries {
		require.Equal(t, listed[i], entry.Path)

		want, sumErr := checksum.SumFile(filepath.Join(root, filepath.FromSlash(entry.Path)))
		require.NoError(t, sumErr)
		require.Equal(t, want, entry.Digest)
	}

	require.NoError(t, Check(ListPath(root, "Sample1"), DigestPath(root, "Sample1")))
}

// TestBuilderIdempotent ensures re-running over unchanged data yields
// byte-identical output.
func TestBuilderIdempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"x.txt": "x\n",
		"y.txt": "y\n",
	})

	builder := NewBuilder(nil)
	files := []string{"y.txt", "x.txt"}

	require.NoError(t, builder.Write(context.Background(), root, root, "misc", files))

	firstList, err := os.ReadFile(ListPath(root, "misc"))
	require.NoError(t, err)
	firstDigest, err := os.ReadFile(DigestPath(root, "misc"))
	require.NoError(t, err)

	require.NoError(t, builder.Write(context.Background(), root, root, "misc", files))

	secondList, err := os.ReadFile(ListPath(root, "misc"))
	require.NoError(t, err)
	secondDigest, err := os.ReadFile(DigestPath(root, "misc"))
	require.NoError(t, err)

	require.Equal(t, firstList, secondList)
	require.Equal(t, firstDigest, secondDigest)
}

// TestBuilderUnreadableFile ensures no half of the pair is written when a
// digest fails.
func TestBuilderUnreadableFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"ok.txt": "fine\n"})

	builder := NewBuilder(nil)

	err := builder.Write(context.Background(), root, root, "broken", []string{"ok.txt", "gone.txt"})
	require.ErrorIs(t, err, checksum.ErrFileUnreadable)

	_, err = os.Stat(ListPath(root, "broken"))
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(DigestPath(root, "broken"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestBuilderCommitsWithoutLeftovers ensures writing goes through temporary
// files and leaves none of them behind once the pair is in place.
func TestBuilderCommitsWithoutLeftovers(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "alpha\n"})

	require.NoError(t, NewBuilder(nil).Write(context.Background(), root, root, "Sample1", []string{"a.txt"}))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	require.ElementsMatch(t, []string{"a.txt", "Sample1.lst", "Sample1.md5"}, names)
}

// TestCheckMismatch covers diverging pair contents.
func TestCheckMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	lst := filepath.Join(dir, "s.lst")
	md5 := filepath.Join(dir, "s.md5")

	const digest = "d41d8cd98f00b204e9800998ecf8427e"

	// Different file set.
	require.NoError(t, os.WriteFile(lst, []byte("a.txt\nb.txt\n"), 0o600))
	require.NoError(t, os.WriteFile(md5, []byte(digest+"  a.txt\n"), 0o600))
	require.ErrorIs(t, Check(lst, md5), ErrManifestMismatch)

	// Same set, different order.
	require.NoError(t, os.WriteFile(md5, []byte(digest+"  b.txt\n"+digest+"  a.txt\n"), 0o600))
	require.ErrorIs(t, Check(lst, md5), ErrManifestMismatch)

	// Matching pair.
	require.NoError(t, os.WriteFile(md5, []byte(digest+"  a.txt\n"+digest+"  b.txt\n"), 0o600))
	require.NoError(t, Check(lst, md5))
}

// TestParseDigestsRejectsGarbage covers malformed digest lines.
func TestParseDigestsRejectsGarbage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.md5")

	for _, contents := range []string{
		"short  a.txt\n",
		"ZZZd8cd98f00b204e9800998ecf8427e  a.txt\n",
		"d41d8cd98f00b204e9800998ecf8427enospace.txt\n",
		"d41d8cd98f00b204e9800998ecf8427e   \n",
	} {
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

		_, err := ParseDigests(path)
		require.Error(t, err, contents)
	}
}

// TestParseDigestsBinaryMarker tolerates the md5sum binary-mode asterisk.
func TestParseDigestsBinaryMarker(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bin.md5")
	require.NoError(t, os.WriteFile(path, []byte("d41d8cd98f00b204e9800998ecf8427e *a.bin\n"), 0o600))

	entries, err := ParseDigests(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a.bin", entries[0].Path)
}
