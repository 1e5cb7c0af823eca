package metrics

import (
	"strings"

	"github.com/huangsam/wpperf/internal/contract"
)

const (
	addOperator      = " + "
	subtractOperator = " - "
)

// Term is one signed metric of an expression.
type Term struct {
	Name     string
	Negative bool
	extract  Extractor
}

// Expression is a sum of signed metric terms, e.g. "LCP - TTFB".
type Expression struct {
	Name  string
	Terms []Term
}

// ResolveExpression parses a metric expression and binds every term.
// Operators must have exactly one space on each side; "LCP-TTFB" is a single
// (unsupported) metric name.
func ResolveExpression(expr string) (*Expression, error) {
	e := &Expression{Name: expr}
	for additive := range strings.SplitSeq(expr, addOperator) {
		for i, name := range strings.Split(additive, subtractOperator) {
			extract, err := BindExtractor(name)
			if err != nil {
				return nil, err
			}
			e.Terms = append(e.Terms, Term{Name: name, Negative: i > 0, extract: extract})
		}
	}
	return e, nil
}

// Evaluate combines the terms for one run. Any failing term fails the whole expression.
func (e *Expression) Evaluate(run contract.Run) (float64, error) {
	var total float64
	for _, term := range e.Terms {
		v, err := term.extract(run)
		if err != nil {
			return 0, err
		}
		if term.Negative {
			total -= v
		} else {
			total += v
		}
	}
	return total, nil
}
