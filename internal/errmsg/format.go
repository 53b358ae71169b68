// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackStart  Op = "start playback"
	OpPlaybackSeek   Op = "seek"
	OpPlaybackResume Op = "resume playback"
	OpQualityChange  Op = "change stream quality"
	OpBackendStart   Op = "start playback engine"

	// Stream operations
	OpStreamResolve  Op = "resolve stream"
	OpTranscodeStart Op = "start transcode session"

	// Gateway operations
	OpMetadataLoad    Op = "load item details"
	OpLibraryBrowse   Op = "browse library"
	OpServerDiscovery Op = "find plex server"
	OpProgressReport  Op = "report playback progress"

	// State operations
	OpStateLoad Op = "load saved state"
	OpStateSave Op = "save state"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
