package platform

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Filename limits
const (
	MaxFilenameLength = 200
)

// Characters not allowed in filenames across supported platforms
var invalidFilenameChars = []string{"<", ">", ":", "\"", "/", "\\", "|", "?", "*"}

// CreateDirectoryIfNotExists ensures the directory exists
func CreateDirectoryIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, DefaultDirPermissions)
	}
	return nil
}

// SanitizeFilename replaces characters that are invalid in filenames and
// trims the result to a safe length, preserving the extension.
func SanitizeFilename(filename, replacement string) string {
	if replacement == "" {
		replacement = "_"
	}

	sanitized := filename
	for _, ch := range invalidFilenameChars {
		sanitized = strings.ReplaceAll(sanitized, ch, replacement)
	}

	// Control characters are replaced too
	var b strings.Builder
	for _, r := range sanitized {
		if r < 0x20 {
			b.WriteString(replacement)
			continue
		}
		b.WriteRune(r)
	}
	sanitized = strings.TrimSpace(b.String())

	if len(sanitized) > MaxFilenameLength {
		ext := filepath.Ext(sanitized)
		base := sanitized[:MaxFilenameLength-len(ext)]
		sanitized = base + ext
	}

	if sanitized == "" {
		sanitized = "unnamed"
	}

	return sanitized
}

// UniquePath resolves filename conflicts by appending a counter before the
// extension: "video.mp4" becomes "video (1).mp4", then "video (2).mp4".
func UniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// ParseURLListFile reads one URL per line from a text file, skipping blank
// lines and '#' comments.
func ParseURLListFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open URL list: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read URL list: %w", err)
	}

	return urls, nil
}
