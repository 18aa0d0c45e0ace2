package host

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Style of a notification.
type Style int

const (
	StyleSuccess Style = iota
	StyleFailure
	StyleAnimated
)

func (s Style) String() string {
	switch s {
	case StyleFailure:
		return "failure"
	case StyleAnimated:
		return "animated"
	default:
		return "success"
	}
}

// Notification is a short user-facing message, like a toast.
type Notification struct {
	Style   Style
	Title   string
	Message string
}

// Notifier shows notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the logger.
type LogNotifier struct {
	Logger *zap.SugaredLogger
}

func (l LogNotifier) Notify(_ context.Context, n Notification) {
	logger := l.Logger
	if logger == nil {
		return
	}
	if n.Style == StyleFailure {
		logger.Warnw(n.Title, "message", n.Message)
		return
	}
	logger.Infow(n.Title, "message", n.Message, "style", n.Style.String())
}

// DesktopNotifier posts macOS notifications through osascript and logs
// everything. On other systems it only logs.
type DesktopNotifier struct {
	Log LogNotifier
}

func (d DesktopNotifier) Notify(ctx context.Context, n Notification) {
	d.Log.Notify(ctx, n)
	if runtime.GOOS != "darwin" || n.Style == StyleAnimated {
		return
	}
	if err := exec.CommandContext(ctx, "osascript", "-e", notificationScript(n)).Run(); err != nil && d.Log.Logger != nil {
		d.Log.Logger.Debugw("osascript notification failed", "error", err)
	}
}

// AppleScript string literals only know \\ and \" escapes.
var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func appleScriptString(s string) string {
	return `"` + appleScriptEscaper.Replace(s) + `"`
}

func notificationScript(n Notification) string {
	return fmt.Sprintf("display notification %s with title %s", appleScriptString(n.Message), appleScriptString(n.Title))
}

// RecordingNotifier keeps every notification; safe for concurrent use.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *RecordingNotifier) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

// Sent returns a copy of the recorded notifications.
func (r *RecordingNotifier) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}
