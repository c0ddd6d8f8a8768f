package utils

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// ErrUnsafeName is returned when a requested media name could escape its root.
var ErrUnsafeName = errors.New("unsafe file name")

// SafeName reduces a client-supplied file name to its final path segment,
// replaces spaces with underscores and keeps only letters, numbers, '_', '-'
// and '.'. The result may be empty.
func SafeName(name string) string {
	// Clients may send either separator regardless of platform.
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "/" || name == "." {
		return ""
	}
	name = strings.ReplaceAll(name, " ", "_")

	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	// "." and ".." would resolve to a directory.
	if strings.Trim(b.String(), ".") == "" {
		return ""
	}
	return b.String()
}

// StorageName returns SafeName(name), or a timestamp name when nothing survives.
func StorageName(name string, now time.Time) string {
	if safe := SafeName(name); safe != "" {
		return safe
	}
	return fmt.Sprintf("photo_%d.jpg", now.Unix())
}

// WithSuffix inserts "_suffix" between the base name and the extension.
func WithSuffix(name, suffix string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + suffix + ext
}

// ResolveMediaPath maps a requested file name to a path directly under root.
// Anything that is not a plain single-segment name is rejected.
func ResolveMediaPath(root, name string) (string, error) {
	if name == "" || name == "." || name == ".." {
		return "", ErrUnsafeName
	}
	if strings.ContainsAny(name, "/\\") || name != filepath.Base(name) {
		return "", ErrUnsafeName
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	joined := filepath.Join(rootAbs, name)
	if filepath.Dir(joined) != filepath.Clean(rootAbs) {
		return "", ErrUnsafeName
	}
	return joined, nil
}
