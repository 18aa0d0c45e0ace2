package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// TempFileName is the file the screenshot is written to.
const TempFileName = "raycast_ocr_temp.png"

// Capturer takes a screenshot and returns the image path. A non-empty path
// may come back with an error; the caller still owns and removes it.
type Capturer interface {
	Capture(ctx context.Context) (string, error)
}

// CommandCapturer runs an interactive capture command such as
// "screencapture -i {path}". "{path}" in any argument is replaced with the
// temp file path.
type CommandCapturer struct {
	Command []string
	Dir     string
}

func (c CommandCapturer) Capture(ctx context.Context) (string, error) {
	if len(c.Command) == 0 {
		return "", errors.New("capture command is empty")
	}
	dir := c.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, TempFileName)
	// a leftover from an earlier run would look like a fresh capture
	_ = os.Remove(path)

	args := make([]string, len(c.Command))
	for i, a := range c.Command {
		args[i] = strings.ReplaceAll(a, "{path}", path)
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return path, fmt.Errorf("capture command failed: %w (%s)", err, strings.TrimSpace(string(out)))
	}

	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrCaptureCancelled
		}
		return path, err
	}
	if fi.Size() == 0 {
		return path, ErrCaptureCancelled
	}
	return path, nil
}
