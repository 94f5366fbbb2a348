package rollup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadEra = errors.New("bad era")

// Era is a named run of seasons.
type Era struct {
	Name  string `yaml:"name"`
	Years []int  `yaml:"years"`
}

// Label renders "Name (first-last)".
func (e Era) Label() string {
	if len(e.Years) == 0 {
		return e.Name
	}
	first, last := e.Years[0], e.Years[len(e.Years)-1]
	if first == last {
		return fmt.Sprintf("%s (%d)", e.Name, first)
	}
	return fmt.Sprintf("%s (%d-%d)", e.Name, first, last)
}

func (e Era) Contains(year int) bool {
	for _, y := range e.Years {
		if y == year {
			return true
		}
	}
	return false
}

// ParseEra parses "Name=2018-2024" or "Name=2019,2020".
func ParseEra(s string) (Era, error) {
	name, span, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Era{}, fmt.Errorf("%w: %q: want Name=YEARS", ErrBadEra, s)
	}
	years, err := ParseYears(span)
	if err != nil {
		return Era{}, err
	}
	return Era{Name: name, Years: years}, nil
}

// ParseYears parses "2018-2024", "2019,2020" or a mix such as "2012-2014,2016".
func ParseYears(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("%w: year %q", ErrBadEra, lo)
		}
		to := from
		if isRange {
			if to, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, fmt.Errorf("%w: year %q", ErrBadEra, hi)
			}
		}
		if to < from {
			return nil, fmt.Errorf("%w: range %q runs backwards", ErrBadEra, part)
		}
		for y := from; y <= to; y++ {
			out = append(out, y)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no years in %q", ErrBadEra, s)
	}
	return out, nil
}

// Span returns the years from..to inclusive.
func Span(from, to int) []int {
	var out []int
	for y := from; y <= to; y++ {
		out = append(out, y)
	}
	return out
}

func itoa(n int) string { return strconv.Itoa(n) }
