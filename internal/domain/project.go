package domain

import "strings"

// genericPathNames are path components that never name a project on their own.
var genericPathNames = map[string]bool{
	"Users":   true,
	"home":    true,
	"root":    true,
	"private": true,
	"var":     true,
	"tmp":     true,
	"mnt":     true,
	"Volumes": true,
}

// DecodeProjectDir turns an encoded project directory name such as
// "-Users-alice-proj" back into the path "/Users/alice/proj".
// The encoding is lossy: dashes that were part of the original path become separators too.
func DecodeProjectDir(dirName string) string {
	trimmed := strings.TrimLeft(dirName, "-")
	return "/" + strings.ReplaceAll(trimmed, "-", "/")
}

// ProjectName returns the last non-generic component of a decoded project path.
func ProjectName(path string) string {
	parts := strings.Split(path, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		p := parts[i]
		if p == "" || genericPathNames[p] {
			continue
		}
		return p
	}
	return ""
}
