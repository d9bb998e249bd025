package stage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	ps "github.com/mitchellh/go-ps"

	"github.com/ekvall/seqdeliver/internal/logger"
)

const (
	// lockFilename is the flock target inside the staging root.
	lockFilename = ".seqdeliver-staging.lock"
	// markerFilename records the PID of the staging run for stale-lock recovery.
	markerFilename = ".seqdeliver-staging.marker"
)

// errStagingInProgress indicates another staging run already owns the tree.
var errStagingInProgress = errors.New("staging already in progress for this tree")

// stagingLock guards a delivery tree against concurrent staging runs. The
// flock covers live processes; the PID marker lets a later run recover from
// a crashed one whose lock the kernel already released.
type stagingLock struct {
	lock       *flock.Flock
	lockPath   string
	markerPath string
}

// acquireStagingLock takes exclusive ownership of the staging root.
func acquireStagingLock(ctx context.Context, root string) (*stagingLock, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create staging root: %w", err)
	}

	markerPath := filepath.Join(root, markerFilename)
	if err := recoverStaleMarker(ctx, markerPath); err != nil {
		return nil, err
	}

	lockPath := filepath.Join(root, lockFilename)
	lock := flock.New(lockPath)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire staging lock: %w", err)
	}

	if !ok {
		return nil, errStagingInProgress
	}

	pid := strconv.Itoa(os.Getpid())
	if err = os.WriteFile(markerPath, []byte(pid+"\n"), 0o644); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("write staging marker: %w", err)
	}

	return &stagingLock{lock: lock, lockPath: lockPath, markerPath: markerPath}, nil
}

// release drops the lock and removes both guard files. The delivered tree
// must not carry them; everything below the root is handed off as-is.
func (l *stagingLock) release(ctx context.Context) {
	if err := os.Remove(l.markerPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf(ctx, "unable to remove staging marker: %v", err)
	}

	if err := l.lock.Unlock(); err != nil {
		logger.Warnf(ctx, "unable to release staging lock: %v", err)
		return
	}

	if err := os.Remove(l.lockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf(ctx, "unable to remove staging lock file: %v", err)
	}
}

// recoverStaleMarker removes a marker left behind by a staging run that is no
// longer alive. A marker whose process still exists means a genuine
// concurrent run.
func recoverStaleMarker(ctx context.Context, markerPath string) error {
	contents, err := os.ReadFile(markerPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("read staging marker: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil {
		logger.Warnf(ctx, "staging marker is malformed, removing: %v", err)
		return os.Remove(markerPath)
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("inspect staging marker owner: %w", err)
	}

	if process != nil {
		return fmt.Errorf("%w: pid %d (%s)", errStagingInProgress, pid, process.Executable())
	}

	logger.InfoKV(ctx, "Removing stale staging marker", "pid", pid)

	return os.Remove(markerPath)
}
