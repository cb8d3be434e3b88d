package editor

import "github.com/user/clipedit-cli/pkg/crop"

// Notifier receives the edits a session makes to its clip. Every call is a
// fire-and-forget notification: the session never waits on or retries them.
type Notifier interface {
	OnTrim(id string, start, end float64)
	OnSpeedChange(id string, rate float64)
	// OnCrop receives nil when the crop was reset to the full frame.
	OnCrop(id string, r *crop.Rect)
	OnSplit(id string, at float64)
	OnDelete(id string)
	OnDuplicate(id string)
	OnSave(id string)
	// OnClose is called once when the editor is dismissed, with the rate
	// in effect at that moment.
	OnClose(id string, rate float64)
}

// NopNotifier ignores every notification. Embed it to implement only some.
type NopNotifier struct{}

func (NopNotifier) OnTrim(string, float64, float64) {}
func (NopNotifier) OnSpeedChange(string, float64)   {}
func (NopNotifier) OnCrop(string, *crop.Rect)       {}
func (NopNotifier) OnSplit(string, float64)         {}
func (NopNotifier) OnDelete(string)                 {}
func (NopNotifier) OnDuplicate(string)              {}
func (NopNotifier) OnSave(string)                   {}
func (NopNotifier) OnClose(string, float64)         {}
