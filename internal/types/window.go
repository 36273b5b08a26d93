package types

import "context"

// LiveWindow is a handle on a window currently open in a running browser.
//
// SetURL, OpenTab, Activate and Reload mutate the user's browser state.
type LiveWindow interface {
	// ID is the browser's session window ID, comparable with window IDs
	// recorded in the session-state file of the same browser session.
	ID() int
	// URL returns the URL of the window's active tab.
	URL(ctx context.Context) (string, error)
	// SetURL navigates the window's active tab.
	SetURL(ctx context.Context, url string) error
	Minimized(ctx context.Context) (bool, error)
	// OpenTab opens url in a new tab of this window.
	OpenTab(ctx context.Context, url string) (LiveWindow, error)
	// Activate brings the window to the front.
	Activate(ctx context.Context) error
	// Reload reloads the active tab.
	Reload(ctx context.Context) error
}

// WindowEnumerator lists the live windows of a browser process.
type WindowEnumerator interface {
	Windows(ctx context.Context, proc ProcessInfo) ([]LiveWindow, error)
}

// WindowOpener is implemented by enumerators that can open new top-level windows.
type WindowOpener interface {
	OpenWindow(ctx context.Context, proc ProcessInfo, url string) (LiveWindow, error)
}
