package platform

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RelSlash returns the relative path from the directory base to target using
// forward slashes regardless of the host separator. Both paths are cleaned
// and made absolute first so callers can pass either form.
func RelSlash(base, target string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", base, err)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", target, err)
	}

	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return "", fmt.Errorf("relating %s to %s: %w", target, base, err)
	}
	return ToSlash(rel), nil
}

// ToSlash converts both Windows and Unix separators to "/". Unlike
// filepath.ToSlash it also rewrites backslashes on Unix hosts, which matters
// for paths read from files written on Windows.
func ToSlash(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}
