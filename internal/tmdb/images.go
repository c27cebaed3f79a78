package tmdb

import "strings"

type ImageSize string

const (
	W92      ImageSize = "w92"
	W154     ImageSize = "w154"
	W185     ImageSize = "w185"
	W342     ImageSize = "w342"
	W500     ImageSize = "w500"
	W780     ImageSize = "w780"
	W1280    ImageSize = "w1280"
	Original ImageSize = "original"
)

func (s ImageSize) Valid() bool {
	switch s {
	case W92, W154, W185, W342, W500, W780, W1280, Original:
		return true
	}
	return false
}

// ImageURL builds <base>/<size><path>. It never touches the network and
// returns "" when path is empty.
func ImageURL(base, path string, size ImageSize) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if !size.Valid() {
		size = W500
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(base, "/") + "/" + string(size) + path
}
