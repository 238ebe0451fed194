package bundle

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	spaceRuns        = regexp.MustCompile(`\s+`)
)

// SanitizeFilename drops characters Windows rejects in file names and
// collapses whitespace.
func SanitizeFilename(name string) string {
	safe := invalidFileChars.ReplaceAllString(name, "")
	safe = strings.TrimSpace(safe)
	return spaceRuns.ReplaceAllString(safe, " ")
}

func FormatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
