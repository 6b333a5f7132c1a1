// Package threshold evaluates numeric inputs against the small expression
// language used by code-compliance checks.
//
// An expression is either a closed range "A-B" (inclusive on both ends) or a
// comparison "OP N" where OP is one of >=, <=, > or <. Whitespace around the
// operator and operands is ignored.
package threshold

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPass        Status = "pass"
	StatusLikelyIssue Status = "likely_issue"
	StatusUnknown     Status = "unknown"
	// StatusNotChecked is assigned by callers when no input was supplied.
	// Evaluate never returns it.
	StatusNotChecked Status = "not_checked"
)

// ErrMalformedExpression is returned by Parse for text outside the grammar.
var ErrMalformedExpression = errors.New("malformed threshold expression")

// Thresholds holds the optional pass, warning and fail expressions of a check.
type Thresholds struct {
	Pass    string `json:"pass,omitempty" yaml:"pass,omitempty"`
	Warning string `json:"warning,omitempty" yaml:"warning,omitempty"`
	Fail    string `json:"fail,omitempty" yaml:"fail,omitempty"`
}

// IsEmpty reports whether no expression is set.
func (t Thresholds) IsEmpty() bool {
	return strings.TrimSpace(t.Pass) == "" &&
		strings.TrimSpace(t.Warning) == "" &&
		strings.TrimSpace(t.Fail) == ""
}

type operator int

const (
	opRange operator = iota
	opGTE
	opLTE
	opGT
	opLT
)

// Expression is a parsed threshold expression.
type Expression struct {
	op operator
	lo float64
	hi float64
}

// Parse parses a single threshold expression.
func Parse(expr string) (Expression, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return Expression{}, fmt.Errorf("%w: empty", ErrMalformedExpression)
	}

	for _, c := range []struct {
		prefix string
		op     operator
	}{
		// two-character operators first so ">=" is not read as ">"
		{">=", opGTE},
		{"<=", opLTE},
		{">", opGT},
		{"<", opLT},
	} {
		if strings.HasPrefix(s, c.prefix) {
			n, err := parseNumber(s[len(c.prefix):])
			if err != nil {
				return Expression{}, fmt.Errorf("%w: %q: %v", ErrMalformedExpression, expr, err)
			}
			return Expression{op: c.op, lo: n, hi: n}, nil
		}
	}

	// Range. The separator search starts at index 1 so a negative lower
	// bound ("-5-5") is read correctly.
	idx := strings.Index(s[1:], "-")
	if idx < 0 {
		return Expression{}, fmt.Errorf("%w: %q", ErrMalformedExpression, expr)
	}
	idx++

	lo, err := parseNumber(s[:idx])
	if err != nil {
		return Expression{}, fmt.Errorf("%w: %q: %v", ErrMalformedExpression, expr, err)
	}
	hi, err := parseNumber(s[idx+1:])
	if err != nil {
		return Expression{}, fmt.Errorf("%w: %q: %v", ErrMalformedExpression, expr, err)
	}
	if lo > hi {
		return Expression{}, fmt.Errorf("%w: %q: lower bound exceeds upper bound", ErrMalformedExpression, expr)
	}

	return Expression{op: opRange, lo: lo, hi: hi}, nil
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing number")
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, errors.New("number must be finite")
	}
	return n, nil
}

// Matches reports whether value satisfies the expression.
func (e Expression) Matches(value float64) bool {
	switch e.op {
	case opGTE:
		return value >= e.lo
	case opLTE:
		return value <= e.lo
	case opGT:
		return value > e.lo
	case opLT:
		return value < e.lo
	default:
		return value >= e.lo && value <= e.hi
	}
}

// matches parses expr and tests value against it. Absent or malformed
// expressions never match.
func matches(expr string, value float64) bool {
	if strings.TrimSpace(expr) == "" {
		return false
	}
	e, err := Parse(expr)
	if err != nil {
		return false
	}
	return e.Matches(value)
}

// Evaluate classifies value against t.
//
// Expressions are tested in the order pass, fail, warning and the first
// match wins, so a value satisfying both warning and fail is reported through
// fail. Warning and fail both classify as StatusLikelyIssue. When nothing
// matches the result is StatusUnknown.
func Evaluate(value float64, t Thresholds) Status {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return StatusUnknown
	}

	switch {
	case matches(t.Pass, value):
		return StatusPass
	case matches(t.Fail, value):
		return StatusLikelyIssue
	case matches(t.Warning, value):
		return StatusLikelyIssue
	default:
		return StatusUnknown
	}
}

// Validate reports every malformed expression in t. Absent expressions are
// not errors.
func Validate(t Thresholds) error {
	var errs []error
	for _, f := range []struct {
		name string
		expr string
	}{
		{"pass", t.Pass},
		{"warning", t.Warning},
		{"fail", t.Fail},
	} {
		if strings.TrimSpace(f.expr) == "" {
			continue
		}
		if _, err := Parse(f.expr); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
		}
	}
	return errors.Join(errs...)
}
