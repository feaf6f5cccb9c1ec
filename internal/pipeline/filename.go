package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var unsafeChars = regexp.MustCompile(`[^\w\-_. ]+`)

const maxBaseNameLen = 200

// sanitizeBaseName strips characters that could break paths or escape the
// working directory and bounds the length.
func sanitizeBaseName(name string) string {
	name = strings.TrimSpace(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	if len(name) > maxBaseNameLen {
		name = name[:maxBaseNameLen]
	}
	if name == "" {
		name = fmt.Sprintf("video_%d", time.Now().UnixMilli())
	}
	return name
}

// outputBaseName builds a collision-free base name: sanitized hint plus a
// uniqueness suffix of job id and timestamp, so concurrent or retried
// attempts never clash.
func outputBaseName(hint, title, jobID string, now time.Time) string {
	base := hint
	if base == "" {
		base = title
	}
	return fmt.Sprintf("%s-%s-%d", sanitizeBaseName(base), jobID, now.UnixMilli())
}
