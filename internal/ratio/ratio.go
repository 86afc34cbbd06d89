// Package ratio solves simple proportions.
package ratio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrDivisionByZero is returned when the divisor is zero.
var ErrDivisionByZero = errors.New("ratio: division by zero")

// RuleOfThree solves x in
//
//	  x       mult1
//	----- = -------
//	mult2     div
//
// that is mult1 * mult2 / div.
func RuleOfThree(mult1, mult2, div float64) (float64, error) {
	if div == 0 {
		return 0, ErrDivisionByZero
	}
	return mult1 * mult2 / div, nil
}

// ParseArgs parses exactly three decimal numbers: mult1, mult2, div.
func ParseArgs(args []string) (mult1, mult2, div float64, err error) {
	if len(args) != 3 {
		return 0, 0, 0, fmt.Errorf("ratio: want 3 numbers (mult1 mult2 div), got %d", len(args))
	}
	var v [3]float64
	for i, a := range args {
		v[i], err = strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("ratio: argument %d: %w", i+1, err)
		}
	}
	return v[0], v[1], v[2], nil
}

// Format renders a result without trailing zeros, keeping one decimal for
// whole numbers (6 -> "6.0").
func Format(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
