// Package calc evaluates basic arithmetic expressions and exposes the
// evaluator as an agent tool.
//
// The evaluator supports exactly two precedence tiers: `*` and `/` bind
// tighter than `+` and `-`. It works by splitting on the last `+` or `-` not
// at position 0, then on the first `*` or `/`, recursing on each half until
// a numeric literal remains. There are no parentheses, and chained `*`/`/`
// associate to the right as a consequence of the first-occurrence split.
// This is a known limitation of the algorithm, kept deliberately; tests pin
// this exact behavior.
package calc

import (
	"fmt"
	"strconv"
	"strings"
)

// ExpressionError reports a malformed expression: mismatched operators,
// division by zero, or a non-numeric token.
type ExpressionError struct {
	Expr   string
	Reason string
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("invalid expression %q: %s", e.Expr, e.Reason)
}

// Evaluate parses and evaluates an arithmetic expression using `+ - * /`
// with the two-tier precedence rule described in the package documentation.
func Evaluate(expr string) (float64, error) {
	cleaned := stripWhitespace(expr)
	if cleaned == "" {
		return 0, &ExpressionError{Expr: expr, Reason: "empty expression"}
	}
	v, err := eval(expr, cleaned)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func stripWhitespace(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// eval evaluates a whitespace-free expression fragment. orig is the caller's
// original expression, carried for error messages.
func eval(orig, s string) (float64, error) {
	if s == "" {
		return 0, &ExpressionError{Expr: orig, Reason: "mismatched operators"}
	}

	// Lowest tier: split on the last + or - not at position 0, so the
	// left half keeps accumulating and the chain stays left-associative.
	// Position 0 is exempt to allow a leading sign on a literal.
	for i := len(s) - 1; i > 0; i-- {
		op := s[i]
		if op != '+' && op != '-' {
			continue
		}
		left, err := eval(orig, s[:i])
		if err != nil {
			return 0, err
		}
		right, err := eval(orig, s[i+1:])
		if err != nil {
			return 0, err
		}
		if op == '+' {
			return left + right, nil
		}
		return left - right, nil
	}

	// Higher tier: split on the first * or /.
	for i := 0; i < len(s); i++ {
		op := s[i]
		if op != '*' && op != '/' {
			continue
		}
		left, err := eval(orig, s[:i])
		if err != nil {
			return 0, err
		}
		right, err := eval(orig, s[i+1:])
		if err != nil {
			return 0, err
		}
		if op == '*' {
			return left * right, nil
		}
		if right == 0 {
			return 0, &ExpressionError{Expr: orig, Reason: "division by zero"}
		}
		return left / right, nil
	}

	// Base case: a numeric literal, possibly signed.
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ExpressionError{Expr: orig, Reason: fmt.Sprintf("non-numeric token %q", s)}
	}
	return v, nil
}
