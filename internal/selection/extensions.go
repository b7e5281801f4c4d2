package selection

import (
	"path/filepath"
	"sort"
	"strings"

	"mediaforge/internal/profile"
)

var supported = map[profile.Category]map[string]struct{}{
	profile.CategoryAudio: set(".mp3", ".wav", ".aac", ".m4a", ".flac", ".ogg", ".wma"),
	profile.CategoryVideo: set(".mp4", ".mkv", ".avi", ".mov", ".webm", ".flv", ".wmv"),
}

func set(values ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

// CategoryFor returns the category implied by path's extension.
func CategoryFor(path string) (profile.Category, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for category, exts := range supported {
		if _, ok := exts[ext]; ok {
			return category, true
		}
	}
	return "", false
}

// IsSupported reports whether path has a recognised media extension.
func IsSupported(path string) bool {
	_, ok := CategoryFor(path)
	return ok
}

// Extensions lists the supported extensions for category, sorted.
func Extensions(category profile.Category) []string {
	out := make([]string, 0, len(supported[category]))
	for ext := range supported[category] {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
