package clip

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ExportPath computes the file a clip is exported to inside dir.
// Filename format: {HHMMSS}-{title}-{id8}.json, where HHMMSS is the raw
// trim start.
func ExportPath(dir string, c Clip) string {
	titleSlug := Slug(c.Title)
	if titleSlug == "" {
		titleSlug = "clip"
	}

	totalSecs := int(c.Mapper().ActiveStart())
	hours := totalSecs / 3600
	minutes := (totalSecs % 3600) / 60
	seconds := totalSecs % 60
	timestamp := fmt.Sprintf("%02d%02d%02d", hours, minutes, seconds)

	id := c.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s-%s.json", timestamp, titleSlug, id))
}

// Slug lowercases s and replaces anything but letters and digits with '_'.
func Slug(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}
