// Package ingest turns source files into sparse voxel records.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gekko3d/voxbake/voxelbake/bake/grid"
)

// HeaderLines is the number of comment lines the text exporter writes before
// the first record.
const HeaderLines = 3

var (
	ErrTruncatedHeader = errors.New("truncated header")
	ErrMalformedRecord = errors.New("malformed record")
)

// ReadText parses "x y z rrggbb" records, coordinates in decimal and color in
// hexadecimal, after skipping the header. Any malformed line fails the read.
func ReadText(r io.Reader) ([]grid.Record, error) {
	sc := bufio.NewScanner(r)
	for i := 0; i < HeaderLines; i++ {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, fmt.Errorf("read header: %w", err)
			}
			return nil, fmt.Errorf("%w: %d of %d lines", ErrTruncatedHeader, i, HeaderLines)
		}
	}

	var recs []grid.Record
	line := HeaderLines
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		rec, err := parseRecord(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", line+1, err)
	}
	return recs, nil
}

func parseRecord(text string) (grid.Record, error) {
	f := strings.Fields(text)
	if len(f) != 4 {
		return grid.Record{}, fmt.Errorf("%w: want 4 fields, got %d in %q", ErrMalformedRecord, len(f), text)
	}
	var xyz [3]int
	for a := 0; a < 3; a++ {
		v, err := strconv.Atoi(f[a])
		if err != nil {
			return grid.Record{}, fmt.Errorf("%w: coordinate %q", ErrMalformedRecord, f[a])
		}
		xyz[a] = v
	}
	hex := strings.TrimPrefix(strings.TrimPrefix(f[3], "0x"), "#")
	c, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || c > 0xFFFFFF {
		return grid.Record{}, fmt.Errorf("%w: color %q", ErrMalformedRecord, f[3])
	}
	return grid.Record{X: xyz[0], Y: xyz[1], Z: xyz[2], Color: uint32(c)}, nil
}
