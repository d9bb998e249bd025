package status

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ekvall/seqdeliver/internal/domain/delivery"
)

// TestGetUnknownSample reports NOT_DELIVERED without an error.
func TestGetUnknownSample(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(t.TempDir())

	record, err := repo.Get(context.Background(), "P1", "Sample1")
	require.NoError(t, err)
	require.Equal(t, delivery.StatusNotDelivered, record.Status)
}

// TestSetAndLoadRoundtrip walks a sample through the lifecycle and reads it back.
func TestSetAndLoadRoundtrip(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "P1", "Sample1", delivery.StatusInProgress, "run-1"))
	require.NoError(t, repo.Set(ctx, "P1", "Sample1", delivery.StatusStaged, "run-1"))

	record, err := repo.Get(ctx, "P1", "Sample1")
	require.NoError(t, err)
	require.Equal(t, delivery.StatusStaged, record.Status)
	require.Equal(t, "run-1", record.DeliveryID)
	require.False(t, record.UpdatedAt.IsZero())

	all, err := repo.Load(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, all, 1)
}

// TestSetRejectsIllegalTransition enforces the lifecycle model.
func TestSetRejectsIllegalTransition(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(t.TempDir())
	ctx := context.Background()

	err := repo.Set(ctx, "P1", "Sample1", delivery.StatusDelivered, "run-1")
	require.ErrorIs(t, err, ErrIllegalTransition)
}

// TestLoadMissingProject returns ErrNotFound.
func TestLoadMissingProject(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(t.TempDir())

	_, err := repo.Load(context.Background(), "absent")
	require.ErrorIs(t, err, ErrNotFound)
}

// TestMarkDelivered writes the acknowledgement file with timestamp and run ID.
func TestMarkDelivered(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "P1", "Sample1", delivery.StatusInProgress, "run-1"))
	require.NoError(t, repo.Set(ctx, "P1", "Sample1", delivery.StatusStaged, "run-1"))
	require.NoError(t, repo.MarkDelivered(ctx, "P1", "Sample1", "run-1"))

	record, err := repo.Get(ctx, "P1", "Sample1")
	require.NoError(t, err)
	require.Equal(t, delivery.StatusDelivered, record.Status)

	contents, err := os.ReadFile(repo.AckPath("Sample1"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(strings.TrimSpace(string(contents)), "run-1"))
	require.Contains(t, string(contents), "T") // ISO-8601 timestamp
}
