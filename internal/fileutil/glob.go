package fileutil

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// HasMeta reports whether pattern contains any glob metacharacter.
func HasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// ValidGlob reports whether pattern is a well-formed glob.
func ValidGlob(pattern string) bool {
	return doublestar.ValidatePattern(pattern)
}

// MatchGlob reports whether name matches the slash-separated glob pattern.
// A "**" segment matches zero or more whole segments and {a,b} picks one of
// its alternatives. A leading slash is ignored on both sides.
func MatchGlob(pattern, name string) bool {
	ok, err := doublestar.Match(strings.TrimPrefix(pattern, "/"), strings.TrimPrefix(name, "/"))
	return err == nil && ok
}

// cleanGlob normalizes a slash-separated pattern the way plain paths are
// cleaned, so "./src/*.js" and "src/*.js" name the same files.
func cleanGlob(pattern string) string {
	return path.Clean(pattern)
}

// staticPrefix returns the leading segments of pattern that contain no glob
// metacharacters, joined with slashes.
func staticPrefix(pattern string) string {
	segs := strings.Split(pattern, "/")
	var static []string
	for i, s := range segs {
		if HasMeta(s) || i == len(segs)-1 {
			break
		}
		static = append(static, s)
	}
	return strings.Join(static, "/")
}
