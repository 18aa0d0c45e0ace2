package host

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Opener opens a URL in the user's browser.
type Opener interface {
	OpenURL(ctx context.Context, url string) error
}

// SystemOpener shells out to the platform's URL handler.
type SystemOpener struct{}

func (SystemOpener) OpenURL(ctx context.Context, url string) error {
	name, args := openCommand(runtime.GOOS, url)
	if out, err := exec.CommandContext(ctx, name, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("open %s: %w (%s)", url, err, out)
	}
	return nil
}

func openCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}
