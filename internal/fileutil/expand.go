package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type source struct {
	path string // path as returned to the caller
	key  string // slash form used for matching and de-duplication
}

// ExpandSources resolves source patterns relative to base in order:
//   - a glob pattern adds the files it matches, sorted;
//   - a plain path is added verbatim, whether or not it exists, so callers
//     can warn about missing files;
//   - a pattern starting with "!" removes every earlier entry it matches.
//
// Entries are de-duplicated, keeping the first occurrence. Globs descend into
// every directory, node_modules and .git included; exclude them with a
// negated pattern such as "!**/node_modules/**".
func ExpandSources(base string, patterns []string) ([]string, error) {
	if base == "" {
		base = "."
	}

	var sources []source
	seen := make(map[string]bool)

	add := func(s source) {
		if seen[s.key] {
			return
		}
		seen[s.key] = true
		sources = append(sources, s)
	}

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if exclude, ok := strings.CutPrefix(pattern, "!"); ok {
			exclude = cleanGlob(filepath.ToSlash(exclude))
			kept := sources[:0]
			for _, s := range sources {
				if s.key == exclude || MatchGlob(exclude, s.key) {
					delete(seen, s.key)
					continue
				}
				kept = append(kept, s)
			}
			sources = kept
			continue
		}

		if !HasMeta(pattern) {
			add(newSource(base, filepath.Clean(pattern)))
			continue
		}

		matches, err := globFiles(base, cleanGlob(filepath.ToSlash(pattern)))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			add(m)
		}
	}

	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = s.path
	}
	return out, nil
}

func newSource(base, p string) source {
	if filepath.IsAbs(p) {
		return source{path: p, key: filepath.ToSlash(p)}
	}
	return source{path: filepath.Join(base, p), key: filepath.ToSlash(p)}
}

// globFiles walks the static prefix of pattern and returns the regular files
// matching the rest of it, sorted by key.
func globFiles(base, pattern string) ([]source, error) {
	if !ValidGlob(pattern) {
		return nil, fmt.Errorf("invalid glob %q", pattern)
	}

	abs := path.IsAbs(pattern) || filepath.IsAbs(filepath.FromSlash(pattern))
	prefix := staticPrefix(pattern)
	rest := strings.TrimPrefix(pattern[len(prefix):], "/")
	if abs && prefix == "" {
		prefix = "/"
	}

	root := filepath.FromSlash(prefix)
	if !abs {
		root = filepath.Join(base, root)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		// Nothing under a missing directory can match.
		return nil, nil
	}

	var matches []source
	err := doublestar.GlobWalk(os.DirFS(root), rest, func(p string, d fs.DirEntry) error {
		matches = append(matches, source{
			path: filepath.Join(root, filepath.FromSlash(p)),
			key:  path.Join(prefix, p),
		})
		return nil
	}, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].key < matches[j].key })
	return matches, nil
}
