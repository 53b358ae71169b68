package icons

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the icon characters for the current style.
type Icons struct {
	Library string
	Show    string
	Season  string
	Episode string
	Movie   string
	Watched string
}

var (
	nerdIcons = Icons{
		Library: "\uf07b ", // nf-fa-folder
		Show:    "\uf26c ", // nf-fa-television
		Season:  "\uf07c ", // nf-fa-folder_open
		Episode: "\uf144 ", // nf-fa-play_circle
		Movie:   "\uf008 ", // nf-fa-film
		Watched: "\uf00c",  // nf-fa-check
	}

	unicodeIcons = Icons{
		Library: "📁 ",
		Show:    "📺 ",
		Season:  "📂 ",
		Episode: "▶ ",
		Movie:   "🎬 ",
		Watched: "✓",
	}

	noneIcons = Icons{
		Library: "/",
		Show:    "",
		Season:  "",
		Episode: "",
		Movie:   "",
		Watched: "*",
	}

	// current holds the active icon set
	current = noneIcons
)

// Init initializes the icons based on the style.
// Call this once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleUnicode:
		current = unicodeIcons
	case StyleNone:
		current = noneIcons
	default:
		current = noneIcons
	}
}

// FormatLibrary formats a library or directory name with its icon.
// For "none" style, the indicator is a suffix ("/").
func FormatLibrary(name string) string {
	if current == noneIcons {
		return name + current.Library
	}
	return current.Library + name
}

// FormatShow formats a show title with its icon.
func FormatShow(name string) string {
	if current == noneIcons {
		return name
	}
	return current.Show + name
}

// FormatSeason formats a season title with its icon.
func FormatSeason(name string) string {
	if current == noneIcons {
		return name
	}
	return current.Season + name
}

// FormatEpisode formats an episode title with its icon.
func FormatEpisode(name string) string {
	if current == noneIcons {
		return name
	}
	return current.Episode + name
}

// FormatMovie formats a movie title with its icon.
func FormatMovie(name string) string {
	if current == noneIcons {
		return name
	}
	return current.Movie + name
}

// Watched returns the watched indicator.
func Watched() string {
	return current.Watched
}
