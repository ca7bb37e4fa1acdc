package kgraph

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLiteral parses a user-supplied literal under the expected kind.
// Quantities split on whitespace: the first token is the magnitude and the
// remainder is the unit (Dimensionless when absent). KindYear and KindDate
// share the temporal grammar: a value with a date separator parses as a full
// date, anything else as a year.
func ParseLiteral(raw string, kind Kind) (Value, error) {
	switch kind {
	case KindString:
		return NewString(raw), nil
	case KindQuantity:
		if strings.Contains(raw, " ") {
			fields := strings.Fields(raw)
			n, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return Value{}, fmt.Errorf("kgraph: parse quantity %q: %w", raw, err)
			}
			return NewQuantity(n, strings.Join(fields[1:], " ")), nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("kgraph: parse quantity %q: %w", raw, err)
		}
		return NewQuantity(n, Dimensionless), nil
	case KindYear, KindDate:
		return ParseTemporal(raw)
	}
	return Value{}, fmt.Errorf("kgraph: parse %q: unknown kind %v", raw, kind)
}

// ParseTemporal parses a date when raw contains a "/" or "-" separator and a
// year otherwise. A leading "-" is a sign marker, not a separator. Date parts
// split at the first and last occurrence of the separator, so a value with a
// single separator ("1990-05") fails to parse.
func ParseTemporal(raw string) (Value, error) {
	start := 0
	if strings.HasPrefix(raw, "-") {
		start = 1
	}
	sep := ""
	switch {
	case strings.Contains(raw, "/"):
		sep = "/"
	case strings.Contains(raw[start:], "-"):
		sep = "-"
	}
	if sep == "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			return Value{}, fmt.Errorf("kgraph: parse year %q: %w", raw, err)
		}
		return NewYear(y), nil
	}

	p1 := start + strings.Index(raw[start:], sep)
	p2 := strings.LastIndex(raw, sep)
	if p1 == p2 {
		return Value{}, fmt.Errorf("kgraph: parse date %q: want year, month and day", raw)
	}
	y, err := strconv.Atoi(raw[:p1])
	if err != nil {
		return Value{}, fmt.Errorf("kgraph: parse date %q: %w", raw, err)
	}
	m, err := strconv.Atoi(raw[p1+1 : p2])
	if err != nil {
		return Value{}, fmt.Errorf("kgraph: parse date %q: %w", raw, err)
	}
	d, err := strconv.Atoi(raw[p2+1:])
	if err != nil {
		return Value{}, fmt.Errorf("kgraph: parse date %q: %w", raw, err)
	}
	if m < 1 || m > 12 || d < 1 || d > daysIn(y, m) {
		return Value{}, fmt.Errorf("kgraph: parse date %q: day is out of range", raw)
	}
	return NewDate(y, m, d), nil
}

func daysIn(year, month int) int {
	switch month {
	case 4, 6, 9, 11:
		return 30
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	}
	return 31
}
