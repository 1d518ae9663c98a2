package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
)

// NewFileRotator opens a rolling log file at logFile, rotating once it
// exceeds maxSizeKB kilobytes and keeping at most maxFiles old rolls. The
// returned io.Writer is suitable as logging.Config.Output.
func NewFileRotator(logFile string, maxSizeKB int, maxFiles int) (io.Writer, error) {
	if dir := filepath.Dir(logFile); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("logging: create log directory: %w", err)
		}
	}

	r, err := rotator.New(logFile, int64(maxSizeKB*1024), false, maxFiles)
	if err != nil {
		return nil, fmt.Errorf("logging: create file rotator: %w", err)
	}

	pr, pw := io.Pipe()
	go r.Run(pr)

	return pw, nil
}
