// package lyrics implements the LRC timed-lyric codec and online lyric lookup
package lyrics

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/HeinSoeHtet/harp/internal/models"
)

// timeTag matches one [mm:ss.xx] or [mm:ss.xxx] timestamp tag.
var timeTag = regexp.MustCompile(`\[\d{2}:\d{2}\.\d{2,3}\]`)

// parseTag converts a "[mm:ss.xx]" tag to seconds. Malformed tags yield 0.
func parseTag(tag string) float64 {
	clean := strings.Trim(tag, "[]")
	parts := strings.SplitN(clean, ":", 2)
	if len(parts) != 2 {
		return 0
	}

	minutes, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	seconds, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0
	}

	return float64(minutes)*60 + seconds
}

// ParseLRC decodes LRC-formatted text into timed lyric lines, sorted by time.
//
// A line may carry multiple timestamp tags (e.g. a repeated chorus); each tag
// expands into its own entry sharing the line's text. Lines without a valid
// tag are skipped.
func ParseLRC(content string) []models.LyricLine {
	var lines []models.LyricLine

	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		tags := timeTag.FindAllString(line, -1)
		if len(tags) == 0 {
			continue
		}

		text := strings.TrimSpace(timeTag.ReplaceAllString(line, ""))
		for _, tag := range tags {
			lines = append(lines, models.LyricLine{Time: parseTag(tag), Text: text})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Time < lines[j].Time
	})

	return lines
}

// formatTime renders seconds as an LRC "[mm:ss.xx]" tag.
// Negative or non-finite times clamp to "[00:00.00]".
func formatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "[00:00.00]"
	}
	minutes := int(seconds) / 60
	secs := seconds - float64(minutes*60)
	return fmt.Sprintf("[%02d:%05.2f]", minutes, secs)
}

// FormatLRC encodes timed lyric lines as LRC text, one "[mm:ss.xx] text" line
// per entry.
func FormatLRC(lines []models.LyricLine) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, formatTime(line.Time)+" "+line.Text)
	}
	return strings.Join(parts, "\n")
}
