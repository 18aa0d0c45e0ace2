package ui

import (
	"ai_quick_actions/generator"
	"ai_quick_actions/host"
)

// CompletionNotification is the toast for a finished slot. ok is false for
// events that do not finish a slot.
func CompletionNotification(ev generator.Event) (n host.Notification, ok bool) {
	switch ev.Kind {
	case generator.EventDone:
		return host.Notification{
			Style:   host.StyleSuccess,
			Title:   "Reply Generated",
			Message: ev.Slot.Variant.Title + " reply completed",
		}, true
	case generator.EventFailed:
		return host.Notification{
			Style:   host.StyleFailure,
			Title:   "Generation Error",
			Message: ev.Slot.Error,
		}, true
	}
	return host.Notification{}, false
}
