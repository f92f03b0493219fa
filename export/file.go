package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockTimeout    = 5 * time.Second
	lockRetryDelay = 25 * time.Millisecond
)

// WriteFile writes data to path while holding an advisory lock on a
// sidecar lock file, so concurrent exporters from separate processes
// do not interleave writes.
func WriteFile(path string, data []byte) error {
	lock := flock.New(path + ".lock")

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("export: lock %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("export: lock %s: timed out after %s", path, lockTimeout)
	}
	defer lock.Unlock()

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}
