package pagegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

const (
	pageFileMode = 0o644
	pageDirMode  = 0o755
)

// WritePage creates the parent directories of path and writes text to it,
// replacing any existing file. The write goes through a temporary file and a
// rename, so an interrupted run never leaves a half-written page.
func WritePage(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), pageDirMode); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(text)); err != nil {
		return fmt.Errorf("failed to write page %s: %w", path, err)
	}
	// atomic creates its temp file 0600; pages are meant to be served.
	if err := os.Chmod(path, pageFileMode); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	return nil
}
