// Package keymap defines key bindings for the application.
package keymap

// Binding describes a single key binding.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "browser", "playback"
}

// Bindings contains all key bindings for dispatch and help generation.
var Bindings = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit application", "global"},
	{ActionHelp, []string{"?"}, "Show help", "global"},

	// Browser
	{ActionMoveLeft, []string{"h", "left"}, "Back to parent", "browser"},
	{ActionMoveRight, []string{"l", "right"}, "Open item", "browser"},
	{ActionMoveDown, []string{"j", "down"}, "Move down", "browser"},
	{ActionMoveUp, []string{"k", "up"}, "Move up", "browser"},
	{ActionJumpStart, []string{"g"}, "First item", "browser"},
	{ActionJumpEnd, []string{"G"}, "Last item", "browser"},
	{ActionPageUp, []string{"pgup"}, "Page up", "browser"},
	{ActionPageDown, []string{"pgdown"}, "Page down", "browser"},
	{ActionSelect, []string{"enter"}, "Open or play", "browser"},
	{ActionRefresh, []string{"r"}, "Refresh listing", "browser"},

	// Playback
	{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
	{ActionStop, []string{"s"}, "Stop", "playback"},
	{ActionNextEpisode, []string{"n"}, "Next episode", "playback"},
	{ActionSeekForward, []string{"shift+right"}, "Skip forward", "playback"},
	{ActionSeekBack, []string{"shift+left"}, "Skip back", "playback"},
	{ActionSkipMarker, []string{"tab"}, "Skip intro/credits", "playback"},
	{ActionVolumeUp, []string{"+", "="}, "Volume up", "playback"},
	{ActionVolumeDown, []string{"-"}, "Volume down", "playback"},
	{ActionToggleMute, []string{"m"}, "Toggle mute", "playback"},
	{ActionSpeedUp, []string{">"}, "Faster", "playback"},
	{ActionSpeedDown, []string{"<"}, "Slower", "playback"},
	{ActionQuality, []string{"Q"}, "Change quality", "playback"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range Bindings {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}
