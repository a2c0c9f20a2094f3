// Package yalptest runs sequences of commands against fresh sessions and
// checks their printed results.
package yalptest

import (
	"testing"

	"github.com/luthersystems/yalp/pkg/yalp"
)

// TestSequence is a sequence of commands which are executed sequentially by
// a yalp.Session.
type TestSequence []struct {
	Expr   string // a lisp expression
	Result string // the printed result, including any error prefix
}

// TestSuite is a set of named TestSequences
type TestSuite []struct {
	Name string
	TestSequence
}

// Runner is a test runner.
type Runner struct {
	// Options configure the session created for each TestSequence.  With no
	// options sessions are bootstrapped with the standard prelude.
	Options []yalp.Option
}

// RunTestSuite runs each TestSequence in tests on isolated sessions.
func (r *Runner) RunTestSuite(t *testing.T, tests TestSuite) {
	for i, test := range tests {
		// Each sequence runs as a subtest so that one failure does not hide
		// the results of later sequences.
		t.Run(test.Name, func(t *testing.T) {
			s, err := yalp.New(r.Options...)
			if err != nil {
				t.Fatalf("test %d %q: unable to create session: %v", i, test.Name, err)
			}
			for j, expr := range test.TestSequence {
				result := s.Exec(expr.Expr)
				if result != expr.Result {
					t.Errorf("test %d %q: expr %d: expected result %s (got %s)", i, test.Name, j, expr.Result, result)
				}
			}
		})
	}
}

// RunTestSuite runs each TestSequence in tests on isolated sessions with the
// standard prelude.
func RunTestSuite(t *testing.T, tests TestSuite) {
	(&Runner{}).RunTestSuite(t, tests)
}
