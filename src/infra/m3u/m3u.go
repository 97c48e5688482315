// Package m3u implements the extended M3U codec used for playlist import
// and export. Parsing is all-or-nothing: a malformed directive fails the
// whole document so a half-imported playlist is never created.
package m3u

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

const header = "#EXTM3U"

// Entry is one playlist line: a location plus whatever metadata the
// surrounding #EXTINF directive carried.
type Entry struct {
	URL      string
	Metadata map[string]string
}

// Parse decodes extended M3U content into entries. Plain M3U (no header,
// no directives) is accepted; unknown #-directives are skipped. Any error
// yields a nil entry slice.
func Parse(content string) ([]Entry, error) {
	var entries []Entry
	var pending map[string]string

	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == header {
			continue
		}
		if strings.HasPrefix(line, "#EXTINF:") {
			metadata, err := parseExtInf(strings.TrimPrefix(line, "#EXTINF:"))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			pending = metadata
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		url := strings.Trim(line, "\"'")
		if url == "" {
			continue
		}
		entries = append(entries, Entry{URL: url, Metadata: pending})
		pending = nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading m3u content: %w", err)
	}
	return entries, nil
}

// parseExtInf decodes "duration,display" where display is either a bare
// title or "artist - title".
func parseExtInf(directive string) (map[string]string, error) {
	durationText, display, found := strings.Cut(directive, ",")
	if !found {
		return nil, fmt.Errorf("malformed #EXTINF directive %q", directive)
	}
	duration, err := strconv.Atoi(strings.TrimSpace(durationText))
	if err != nil {
		return nil, fmt.Errorf("malformed #EXTINF duration %q", durationText)
	}

	metadata := make(map[string]string)
	if duration >= 0 {
		metadata["duration"] = strconv.Itoa(duration)
	}
	artist, title, found := strings.Cut(display, " - ")
	if found && strings.TrimSpace(artist) != "" {
		metadata["artist"] = strings.TrimSpace(artist)
		metadata["title"] = strings.TrimSpace(title)
	} else if display = strings.TrimSpace(display); display != "" {
		metadata["title"] = display
	}
	if len(metadata) == 0 {
		return nil, nil
	}
	return metadata, nil
}

// Generate encodes entries as extended M3U. Entries without a title get a
// bare location line; the -1 duration marks an unknown length.
func Generate(entries []Entry) string {
	var builder strings.Builder
	builder.WriteString(header + "\n")

	for _, entry := range entries {
		if directive := extInfOf(entry.Metadata); directive != "" {
			builder.WriteString(directive)
			builder.WriteString("\n")
		}
		builder.WriteString(entry.URL)
		builder.WriteString("\n")
	}
	return builder.String()
}

func extInfOf(metadata map[string]string) string {
	title := metadata["title"]
	if title == "" {
		return ""
	}
	if artist := metadata["artist"]; artist != "" {
		title = artist + " - " + title
	}
	duration := -1
	if text := metadata["duration"]; text != "" {
		if parsed, err := strconv.Atoi(text); err == nil {
			duration = parsed
		}
	}
	return fmt.Sprintf("#EXTINF:%d,%s", duration, title)
}
