// Package fileutil resolves source file patterns for preprocessing targets.
//
// Targets name their sources the way front-end build configs do: an ordered
// list of paths and glob patterns, where a leading "!" excludes files matched
// by an earlier entry.
//
//	sources, err := fileutil.ExpandSources(".", []string{
//	    "src/header.html",
//	    "src/**/*.html",
//	    "!src/vendor/**",
//	})
//
// Globs are matched with doublestar: segments use path.Match syntax, "**"
// matches any number of directories and {a,b} lists alternatives. Patterns
// are cleaned first, so "./src/*.html" and "src/*.html" are the same.
// MatchGlob exposes the same matcher so path tests can share it.
//
// # Ordering
//
// Entries keep the order of the patterns that produced them, and the files
// matched by one glob are sorted. The first entry therefore determines the
// source path a target reports to path-conditional operations.
//
// # Missing files
//
// Plain paths are returned even when they do not exist. The executor filters
// them and warns once per missing file. Globs only ever return existing
// regular files. They descend into every directory, so exclude generated
// trees explicitly:
//
//	"src/**/*.js", "!**/node_modules/**"
package fileutil
