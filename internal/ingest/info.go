// Package ingest reads raw instrument file sets: an INFO metadata file
// describing the recording session plus one or more data files holding one
// sample value per line.  The concatenated samples are split into
// fixed-length bursts, each of which becomes one independent pipeline run.
package ingest

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Metadata describes one recording session as declared by its INFO file.
type Metadata struct {
	Frequency int // sampling frequency in Hz
	Start     time.Time
	End       time.Time
}

// DefaultFrequency is assumed when the INFO file does not declare one.
const DefaultFrequency = 8

// infoTimeLayout is the timestamp format the recorders write.
const infoTimeLayout = "2006.01.02 15:04:05.000"

var digitsRe = regexp.MustCompile(`\d+`)

// Keywords that mark the frequency line.  Recorders write either English or
// Russian labels depending on firmware.
var frequencyKeywords = []string{"frequency", "hz", "частота", "герц", "гц"}

// ReadInfoFile parses the recorder's INFO metadata file.  The frequency is
// located by keyword scan over the first ten lines, falling back to the
// first integer on line 3 and then to DefaultFrequency.  The recording
// start and end timestamps sit on lines 6 and 8 when present.
func ReadInfoFile(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("could not read INFO file: %w", err)
	}

	text := string(raw)
	if !utf8.Valid(raw) {
		// Older recorders write windows-1251.
		decoded, err := charmap.Windows1251.NewDecoder().Bytes(raw)
		if err == nil {
			text = string(decoded)
		}
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	meta := Metadata{Frequency: findFrequency(lines)}

	if len(lines) > 5 {
		if t, ok := parseInfoTime(lines[5]); ok {
			meta.Start = t
		}
	}
	if len(lines) > 7 {
		if t, ok := parseInfoTime(lines[7]); ok {
			meta.End = t
		}
	}

	return meta, nil
}

func findFrequency(lines []string) int {
	limit := len(lines)
	if limit > 10 {
		limit = 10
	}
	for _, line := range lines[:limit] {
		lower := strings.ToLower(line)
		for _, kw := range frequencyKeywords {
			if strings.Contains(lower, kw) {
				if m := digitsRe.FindString(line); m != "" {
					if freq, err := strconv.Atoi(m); err == nil && freq > 0 {
						return freq
					}
				}
			}
		}
	}
	// No labelled line found; recorders conventionally put the frequency
	// on line 3.
	if len(lines) >= 3 {
		if m := digitsRe.FindString(lines[2]); m != "" {
			if freq, err := strconv.Atoi(m); err == nil && freq > 0 {
				return freq
			}
		}
	}
	return DefaultFrequency
}

func parseInfoTime(line string) (time.Time, bool) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] < '0' || line[0] > '9' {
		return time.Time{}, false
	}
	t, err := time.Parse(infoTimeLayout, line)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
