package yalptest

import "testing"

func TestArithmetic(t *testing.T) {
	tests := TestSuite{
		{"add", TestSequence{
			{"(add 2 3)", "5"},
			{"(add 0 0)", "0"},
			{"(add -2 3)", "1"},
			{"(add 5000 5000)", "10000"},
		}},
		{"mult", TestSequence{
			{"(mult 3 4)", "12"},
			{"(mult 7 0)", "0"},
			{"(mult 0 7)", "0"},
		}},
		{"closure", TestSequence{
			{"((closure 2) 3)", "5"},
			{"(define add2 (closure 2))", "(lambda (y) (add x y))"},
			{"(add2 40)", "42"},
		}},
		{"comparison", TestSequence{
			{"(> 3 2)", "#t"},
			{"(> 2 3)", "#f"},
			{"(> 2 2)", "#f"},
			{"(> 1 0)", "#t"},
		}},
	}
	RunTestSuite(t, tests)
}

func TestBoolean(t *testing.T) {
	tests := TestSuite{
		{"not", TestSequence{
			{"(not #t)", "#f"},
			{"(not #f)", "#t"},
			{"(not 1)", "Evaluation error: cond: test is not a boolean: 1"},
		}},
		{"and", TestSequence{
			{"(and #t #t)", "#t"},
			{"(and #t #f)", "#f"},
			{"(and #f #t)", "#f"},
		}},
		{"or", TestSequence{
			{"(or #f #f)", "#f"},
			{"(or #f #t)", "#t"},
			{"(or #t #f)", "#t"},
		}},
	}
	RunTestSuite(t, tests)
}

func TestLists(t *testing.T) {
	tests := TestSuite{
		{"filter and map", TestSequence{
			{"(filter (lambda (x) (> x 1)) (list 1 2 3))", "(2 3)"},
			{"(filter zero? (list 1 2 3))", "()"},
			{"(map add1 (list 1 2 3))", "(2 3 4)"},
			{"(map add1 (list))", "()"},
		}},
		{"append and reverse", TestSequence{
			{"(append (list 1 2) (list 3 4))", "(3 4 1 2)"},
			{"(reverse (list 1 2 3))", "(3 2 1)"},
			{"(reverse (list))", "()"},
		}},
		{"range", TestSequence{
			{"(range 1 4)", "(4 3 2 1)"},
			{"(range 2 2)", "(2)"},
		}},
		{"index", TestSequence{
			{"(!! (list 5 6 7) 0)", "5"},
			{"(!! (list 5 6 7) 2)", "7"},
			{"(!! (list 5 6 7) 3)", "Evaluation error: car: argument is not a pair: nil"},
		}},
		{"zip", TestSequence{
			{"(zip (list 1 2) (list 3 4 5))", "((1 3) (2 4))"},
			{"(map2 cons (zip (list 1 2) (list 3 4)))", "((3 . 1) (4 . 2))"},
		}},
		{"foldr", TestSequence{
			{"(foldr add (list 1 2 3) 0)", "6"},
			{"(foldr (lambda (acc x) (cons x acc)) (list 1 2 3) (list))", "(3 2 1)"},
		}},
	}
	RunTestSuite(t, tests)
}

func TestSort(t *testing.T) {
	tests := TestSuite{
		{"sort lists", TestSequence{
			{"(sort (list 3 1 2))", "(1 2 3)"},
			{"(sort (list 5 1 4 1 3))", "(1 1 3 4 5)"},
			{"(sort (list))", "()"},
			{"(sort (reverse (range 0 6)))", "(0 1 2 3 4 5 6)"},
			{":last", "(0 1 2 3 4 5 6)"},
		}},
	}
	RunTestSuite(t, tests)
}
