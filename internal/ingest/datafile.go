package ingest

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadValueFile reads a .dat/.txt data file holding one sample value per
// line.  Blank lines are skipped and a comma decimal separator is accepted,
// since some instruments write values with the locale's comma.
func ReadValueFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open data file: %w", err)
	}
	defer f.Close()

	var values []float64
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(line, ",", "."), 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: could not parse value %q: %w", path, lineNo, line, err)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	return values, nil
}
