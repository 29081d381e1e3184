package vault

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cuemby/mdvault/pkg/log"
	"github.com/cuemby/mdvault/pkg/metrics"
	"github.com/cuemby/mdvault/pkg/types"
)

// ScanConfig drives the file-state scanner (component A): which extensions
// count as source files.
type ScanConfig struct {
	// Extensions is the accepted-extension set, compared case-insensitively
	// and without a leading dot. DefaultScanConfig sets it to
	// {"md", "markdown"}; an empty set accepts no file.
	Extensions []string
}

// DefaultScanConfig returns the configuration spec.md §4.A names as current:
// markdown files only.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{Extensions: []string{"md", "markdown"}}
}

func (c ScanConfig) accepts(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	for _, accepted := range c.Extensions {
		if strings.EqualFold(ext, accepted) {
			return true
		}
	}
	return false
}

// scan walks root and returns the current ground-truth (file-key, file-state)
// set. Hidden files and directories (basename starting with ".") are
// excluded; symlinks are not followed. A per-entry I/O error is logged and
// the entry skipped; a failure to open root itself is returned to the
// caller.
func scan(root string, cfg ScanConfig) (map[types.FileKey]types.FileState, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ScanDuration)

	result := make(map[types.FileKey]types.FileState)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Logger.Warn().Str("path", path).Err(err).Msg("scan entry error, skipping")
			metrics.ScanErrorsTotal.Inc()
			return nil
		}

		name := info.Name()
		if path != root && strings.HasPrefix(name, ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		if !cfg.accepts(name) {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			log.Logger.Warn().Str("path", path).Err(relErr).Msg("scan entry error, skipping")
			metrics.ScanErrorsTotal.Inc()
			return nil
		}

		key := types.FileKey(rel)
		result[key] = types.FileStateFromTime(info.ModTime())
		metrics.ScanFilesTotal.Inc()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
