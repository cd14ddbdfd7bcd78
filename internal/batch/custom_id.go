package batch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Providers accept custom ids matching ^[a-zA-Z0-9_-]{1,64}$.
const maxCustomIDLen = 64

var unsafeIDChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// CustomID encodes a job key and a sample index as "<key>_s<index>".
func CustomID(key string, sample int) string {
	suffix := "_s" + strconv.Itoa(sample)
	base := unsafeIDChars.ReplaceAllString(key, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "job"
	}
	if len(base)+len(suffix) > maxCustomIDLen {
		base = base[:maxCustomIDLen-len(suffix)]
	}
	return base + suffix
}

// ParseCustomID recovers the sample index. The key part is lossy after
// sanitizing, so callers keep their own id -> key mapping.
func ParseCustomID(id string) (string, int, error) {
	i := strings.LastIndex(id, "_s")
	if i < 0 {
		return "", 0, fmt.Errorf("custom id %q has no sample suffix", id)
	}
	n, err := strconv.Atoi(id[i+2:])
	if err != nil {
		return "", 0, fmt.Errorf("custom id %q: %w", id, err)
	}
	return id[:i], n, nil
}

// uniqueID disambiguates ids that collide after sanitizing or truncation.
// The returned id is never in taken.
func uniqueID(key string, sample, jobIndex int, taken map[string]bool) string {
	id := CustomID(key, sample)
	if !taken[id] {
		return id
	}
	for k := 0; ; k++ {
		tag := strconv.Itoa(jobIndex)
		if k > 0 {
			tag += "-" + strconv.Itoa(k)
		}
		id = CustomID(trimForSuffix(key, tag, sample)+"-"+tag, sample)
		if !taken[id] {
			return id
		}
	}
}

func trimForSuffix(key, tag string, sample int) string {
	room := maxCustomIDLen - len("-"+tag+"_s"+strconv.Itoa(sample))
	if room < 0 {
		room = 0
	}
	key = unsafeIDChars.ReplaceAllString(key, "-")
	if len(key) > room {
		return key[:room]
	}
	return key
}
