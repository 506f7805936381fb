package engine

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/tmadell/gdose/internal/dose"
)

// TallySummaryFile is the text summary the engine writes alongside the
// statepoint when tally output is enabled in settings.
const TallySummaryFile = "tallies.out"

// tallyHeaderRe matches a tally banner line:
//
//	===================>     TALLY 1: DOSE     <===================
var tallyHeaderRe = regexp.MustCompile(`=+>\s+TALLY\s+(\d+)(?::\s+(.*?))?\s+<=+`)

// binRe matches one accumulated score line:
//
//	Current                              3.95042E+00 +/- 1.44211E-02
var binRe = regexp.MustCompile(`^\s*\S.*?\s([0-9.Ee+-]+)\s*\+/-\s*([0-9.Ee+-]+)\s*$`)

// ParseTallySummary parses the engine's text tally summary. Every
// "mean +/- stddev" line under a tally banner becomes one bin of that
// tally, in file order. This reads only what the reduction needs; the
// binary statepoint stays opaque.
func ParseTallySummary(r io.Reader) ([]TallyResult, error) {
	var tallies []TallyResult
	var current *TallyResult

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()

		if m := tallyHeaderRe.FindStringSubmatch(text); m != nil {
			id, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("tally summary line %d: bad tally id %q", line, m[1])
			}
			tallies = append(tallies, TallyResult{
				ID:   id,
				Name: strings.TrimSpace(m[2]),
			})
			current = &tallies[len(tallies)-1]
			continue
		}

		m := binRe.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("tally summary line %d: score line before any tally banner", line)
		}
		mean, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, fmt.Errorf("tally summary line %d: bad mean %q: %w", line, m[1], err)
		}
		stddev, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, fmt.Errorf("tally summary line %d: bad std dev %q: %w", line, m[2], err)
		}
		current.Bins = append(current.Bins, dose.Bin{Mean: mean, StdDev: stddev})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tally summary: %w", err)
	}

	if len(tallies) == 0 {
		return nil, fmt.Errorf("tally summary contains no tallies")
	}
	return tallies, nil
}
