package profilelog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const pruneLockName = ".prune.lock"

// CleanupOldSteps removes step_* directories under root whose contents have
// not been modified for more than retentionDays days. A retentionDays value
// of 0 disables pruning. The whole root is guarded by a file lock so two
// prune runs cannot race each other; a held lock is reported as an error
// rather than waited on. Returns the number of directories removed.
func CleanupOldSteps(logger *slog.Logger, root string, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	root = strings.TrimSpace(root)
	if root == "" {
		return 0, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read log root %s: %w", root, err)
	}

	lock := flock.New(filepath.Join(root, pruneLockName))
	ok, err := lock.TryLock()
	if err != nil {
		return 0, fmt.Errorf("acquire prune lock: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("prune already running for %s", root)
	}
	defer lock.Unlock() //nolint:errcheck

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	pruned := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "step_") {
			continue
		}
		fullPath := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(fullPath); err != nil {
			if logger != nil {
				logger.Warn("step prune failed; directory remains",
					slog.String("path", fullPath),
					slog.Any("error", err))
			}
			continue
		}
		pruned++
		if logger != nil {
			logger.Info("step directory pruned", slog.String("path", fullPath))
		}
	}
	return pruned, nil
}
