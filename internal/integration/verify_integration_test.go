package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ekvall/seqdeliver/internal/checksum"
	"github.com/ekvall/seqdeliver/internal/service/verify"
)

// TestVerify_AfterStaging checks a freshly staged tree verifies clean and
// that corruption and deletion each surface exactly the failing file.
func TestVerify_AfterStaging(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.run(t, false))

	ctx := context.Background()

	sampleMD5 := filepath.Join(f.root, "Sample1.md5")
	miscMD5 := filepath.Join(f.root, "miscellaneous.md5")

	// Untouched tree: everything ok.
	for _, md5Path := range []string{sampleMD5, miscMD5} {
		report, err := verify.Check(ctx, checksum.NewPool(2), md5Path, f.root)
		require.NoError(t, err)
		require.Empty(t, report.Failed(), md5Path)
	}

	// Corrupt one byte of the read file: exactly one mismatch in the sample
	// scope, miscellaneous stays clean.
	fastqPath := filepath.Join(f.root, "Sample1", "02-FASTQ", "AAAAAAXX", "Sample1_1_1_1_1.fastq.gz")
	contents, err := os.ReadFile(fastqPath)
	require.NoError(t, err)
	contents[0] ^= 0x01
	require.NoError(t, os.WriteFile(fastqPath, contents, 0o600))

	report, err := verify.Check(ctx, checksum.NewPool(2), sampleMD5, f.root)
	require.NoError(t, err)

	failed := report.Failed()
	require.Len(t, failed, 1)
	require.Equal(t, verify.StatusMismatch, failed[0].Status)

	miscReport, err := verify.Check(ctx, checksum.NewPool(2), miscMD5, f.root)
	require.NoError(t, err)
	require.Empty(t, miscReport.Failed())

	// Delete a listed report file: exactly one missing entry.
	require.NoError(t, os.Remove(filepath.Join(f.root, "ACKNOWLEDGEMENTS.txt")))

	miscReport, err = verify.Check(ctx, checksum.NewPool(2), miscMD5, f.root)
	require.NoError(t, err)

	failed = miscReport.Failed()
	require.Len(t, failed, 1)
	require.Equal(t, "ACKNOWLEDGEMENTS.txt", failed[0].Path)
	require.Equal(t, verify.StatusMissing, failed[0].Status)

	// The CLI entry point maps failures to an error.
	err = verify.Run(ctx, &verify.Options{DigestPath: miscMD5, TargetDir: f.root})
	require.ErrorIs(t, err, verify.ErrIntegrityCheckFailed)
}
