package yalp

import (
	"strings"
	"testing"

	"github.com/luthersystems/yalp/pkg/lisp"
	"github.com/luthersystems/yalp/pkg/prelude"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	assert.Equal(t, prelude.Names(prelude.Standard()), s.BindingNames())
	assert.Equal(t, "closure, add, mult, filter, map, not, >, and, append, range, sort, or, zip, map2, reverse, !!, foldr", s.ListBindings())
}

func TestNew_emptyPrelude(t *testing.T) {
	s, err := New(WithPrelude(nil))
	require.NoError(t, err)
	assert.Empty(t, s.BindingNames())
	assert.Equal(t, "", s.ListBindings())
	assert.Equal(t, "2", s.Exec("(add1 1)"))
	assert.Equal(t, ":last", s.ListBindings())
}

func TestNew_misorderedPrelude(t *testing.T) {
	defs := []prelude.Definition{
		{Name: "four", Source: "(define four (add 2 2))"},
		{Name: "add", Source: "(define add (lambda (x y) (cond (zero? y) x (add (add1 x) (sub1 y)))))"},
	}
	s, err := New(WithPrelude(defs))
	assert.Nil(t, s)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "prelude definition 0")
		assert.Contains(t, err.Error(), defs[0].Source)
		assert.Contains(t, err.Error(), "unbound symbol: add")
	}

	// the same definitions in dependency order succeed
	s, err = New(WithPrelude([]prelude.Definition{defs[1], defs[0]}))
	require.NoError(t, err)
	assert.Equal(t, "4", s.Exec("four"))
}

func TestNew_preludeParseError(t *testing.T) {
	_, err := New(WithPrelude([]prelude.Definition{
		{Source: "(define one 1)"},
		{Source: "(define two"},
	}))
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "prelude definition 1 failed to parse")
	}
}

func TestNew_options(t *testing.T) {
	_, err := New(WithLogger(nil))
	assert.Error(t, err)
	_, err = New(WithMaxStackHeight(-1))
	assert.Error(t, err)
}

func TestExec(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	assert.Equal(t, "5", s.Exec("(add 2 3)"))
	assert.Equal(t, "(1 2 3)", s.Exec("(sort (list 3 1 2))"))
	assert.Equal(t, "(1 2 3)", s.Exec(":last"))
	assert.Equal(t, "(1 2 3)", s.Exec(":last"))
}

func TestExec_lastBinding(t *testing.T) {
	s, err := New(WithPrelude(nil))
	require.NoError(t, err)
	assert.Equal(t, "Evaluation error: unbound symbol: :last", s.Exec(":last"))
	assert.Equal(t, "1", s.Exec("1"))
	assert.Equal(t, "(a b)", s.Exec("'(a b)"))
	assert.Equal(t, "(a b)", s.Exec(":last"))
	assert.Equal(t, "(lambda (x) x)", s.Exec("(lambda (x) x)"))
	assert.Equal(t, "7", s.Exec("(:last 7)"))
	assert.Equal(t, []string{":last"}, s.BindingNames())

	// failures leave :last alone
	s.Exec("(car 1)")
	s.Exec("(car")
	assert.Equal(t, "7", s.Exec(":last"))
}

func TestExec_redefinition(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	assert.Equal(t, "1", s.Exec("(define x 1)"))
	out := s.Exec("(define x 2)")
	assert.True(t, strings.HasPrefix(out, EvalErrorPrefix), out)
	assert.Contains(t, out, "already defined")
	assert.Equal(t, "1", s.Exec("x"))

	out = s.Exec("(define add 1)")
	assert.True(t, strings.HasPrefix(out, EvalErrorPrefix), out)

	out = s.Exec("(define :last 1)")
	assert.True(t, strings.HasPrefix(out, EvalErrorPrefix), out)
}

func TestExec_parseError(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	before := s.ListBindings()
	assert.Equal(t, "Parse error: command:1:1: unmatched (", s.Exec("(add 2"))
	assert.Equal(t, before, s.ListBindings())

	for _, cmd := range []string{"", "1 2", ")", "#q", "(a \xff)"} {
		out := s.Exec(cmd)
		assert.True(t, strings.HasPrefix(out, ParseErrorPrefix), "command %q: %s", cmd, out)
	}
	assert.Equal(t, before, s.ListBindings())
}

func TestExec_definitionOrder(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	s.Exec("(define b 1)")
	s.Exec("(define a 2)")
	names := s.BindingNames()
	n := len(prelude.Standard())
	assert.Equal(t, []string{"b", ":last", "a"}, names[n:])
}

func TestExec_stackOverflow(t *testing.T) {
	s, err := New(WithMaxStackHeight(200))
	require.NoError(t, err)
	out := s.Exec("(mult 1 5000)")
	assert.True(t, strings.HasPrefix(out, EvalErrorPrefix), out)
	assert.Contains(t, out, "maximum stack height exceeded")
	assert.Equal(t, "5", s.Exec("(add 2 3)"))
	assert.Equal(t, "20000", s.Exec("(add 10000 10000)"))
}

func TestExec_panic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s, err := New(WithPrelude(nil), WithLogger(zap.New(core)))
	require.NoError(t, err)
	r := s.Runtime()
	boom := lisp.Fun(&lisp.FunData{
		Name: "boom",
		Builtin: func(args []lisp.LVal) lisp.LVal {
			panic("boom")
		},
	})
	require.NoError(t, r.SetBinding(r.Intern("boom"), boom, false))

	assert.Equal(t, "Evaluation error: internal error: boom", s.Exec("(boom)"))
	assert.Equal(t, 1, logs.FilterMessage("recovered panic during exec").Len())

	// the session survives
	assert.Equal(t, "3", s.Exec("(add1 2)"))
	assert.Equal(t, "3", s.Exec(":last"))
}

func TestExec_debugLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s, err := New(WithLogger(zap.New(core)))
	require.NoError(t, err)
	assert.Equal(t, len(prelude.Standard()), logs.FilterMessage("prelude definition loaded").Len())
	s.Exec("(add 2")
	assert.Equal(t, 1, logs.FilterMessage("parse error").Len())
}

func TestLoad(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	results, err := s.Load("test.lisp", `
; doubling
(define double (lambda (x) (add x x)))
(double 4)
(double :last)
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"(lambda (x) (add x x))", "8", "16"}, results)
	assert.Equal(t, "16", s.Exec(":last"))

	results, err = s.Load("test.lisp", "(double 1) (triple 1) (double 2)")
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "test.lisp: expression 1")
	}
	assert.Equal(t, []string{"2"}, results)

	_, err = s.Load("bad.lisp", "(double 1) (double")
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "bad.lisp:1:12: unmatched (")
	}
	assert.Equal(t, "2", s.Exec(":last"))
}

func TestExec_deepNesting(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	before := s.ListBindings()
	out := s.Exec(strings.Repeat("(", 10<<20))
	assert.Equal(t, "Parse error: command:1:10001: maximum nesting depth exceeded: 10000", out)
	out = s.Exec(strings.Repeat("'", 1<<20) + "x")
	assert.True(t, strings.HasPrefix(out, ParseErrorPrefix), out)
	assert.Equal(t, before, s.ListBindings())

	s, err = New(WithMaxStackHeight(200))
	require.NoError(t, err)
	out = s.Exec(strings.Repeat("(", 201) + strings.Repeat(")", 201))
	assert.Equal(t, "Parse error: command:1:201: maximum nesting depth exceeded: 200", out)
	_, err = s.Load("deep.lisp", "(add 1 2) "+strings.Repeat("(", 1000))
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "deep.lisp:1:211: maximum nesting depth exceeded")
	}
}

func TestLoad_panic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s, err := New(WithPrelude(nil), WithLogger(zap.New(core)))
	require.NoError(t, err)
	r := s.Runtime()
	boom := lisp.Fun(&lisp.FunData{
		Name: "boom",
		Builtin: func(args []lisp.LVal) lisp.LVal {
			panic("boom")
		},
	})
	require.NoError(t, r.SetBinding(r.Intern("boom"), boom, false))

	results, err := s.Load("boom.lisp", "(add1 1) (boom) (add1 5)")
	if assert.Error(t, err) {
		assert.Equal(t, "boom.lisp: internal error: boom", err.Error())
	}
	assert.Equal(t, []string{"2"}, results)
	assert.Equal(t, 1, logs.FilterMessage("recovered panic during load").Len())

	assert.Equal(t, "2", s.Exec(":last"))
	assert.Equal(t, "4", s.Exec("(add1 3)"))
}
