// Package yalp implements lisp sessions.  A session is bootstrapped with a
// prelude and then executes commands one at a time, turning command text into
// printed result text.  Failures to parse or evaluate a command are reported
// in the result text and never escape Exec.
package yalp

import (
	"strings"

	"github.com/luthersystems/yalp/pkg/prelude"
	"github.com/luthersystems/yalp/pkg/runtime"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// LastSymbol is bound to the value of the most recent successful command.
const LastSymbol = ":last"

// Result prefixes for commands that fail.
const (
	ParseErrorPrefix = "Parse error: "
	EvalErrorPrefix  = "Evaluation error: "
)

// BindingSeparator separates names in the result of ListBindings.
const BindingSeparator = ", "

type config struct {
	prelude        []prelude.Definition
	logger         *zap.Logger
	runtimeOptions []runtime.Option
}

// Option configures a new Session.
type Option func(*config) error

// WithPrelude replaces the standard prelude with defs.  Definitions are
// evaluated in order.  A nil or empty defs starts sessions with no bindings.
func WithPrelude(defs []prelude.Definition) Option {
	return func(c *config) error {
		c.prelude = defs
		return nil
	}
}

// WithLogger makes the session log to logger.  Sessions log nothing by
// default.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		c.logger = logger
		return nil
	}
}

// WithMaxStackHeight limits nested evaluation in the session's runtime.
func WithMaxStackHeight(n int) Option {
	return func(c *config) error {
		c.runtimeOptions = append(c.runtimeOptions, runtime.WithMaxStackHeight(n))
		return nil
	}
}

// Session is one lisp interpreter state.  A Session is not safe for
// concurrent use.
type Session struct {
	runtime *runtime.Runtime
	logger  *zap.Logger
}

// New creates a session and evaluates each prelude definition into it in
// order.  If any definition fails to parse or evaluate no session is
// returned and the error identifies the failing definition.
func New(options ...Option) (*Session, error) {
	c := &config{
		prelude: prelude.Standard(),
		logger:  zap.NewNop(),
	}
	for _, fn := range options {
		err := fn(c)
		if err != nil {
			return nil, err
		}
	}
	ropts := append([]runtime.Option{runtime.WithLogger(c.logger)}, c.runtimeOptions...)
	r, err := runtime.New(ropts...)
	if err != nil {
		return nil, errors.Wrap(err, "invalid runtime configuration")
	}
	s := &Session{
		runtime: r,
		logger:  c.logger,
	}
	err = s.bootstrap(c.prelude)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) bootstrap(defs []prelude.Definition) error {
	for i, def := range defs {
		expr, err := s.runtime.Parse(def.Source)
		if err != nil {
			return errors.Wrapf(err, "prelude definition %d failed to parse: %s", i, def.Source)
		}
		_, err = s.runtime.Eval(expr)
		if err != nil {
			return errors.Wrapf(err, "prelude definition %d failed to evaluate: %s", i, def.Source)
		}
		s.logger.Debug("prelude definition loaded",
			zap.Int("index", i),
			zap.String("name", def.Name))
	}
	return nil
}

// Runtime returns the runtime backing s.
func (s *Session) Runtime() *runtime.Runtime {
	return s.runtime
}

// Exec parses text as a single expression, evaluates it, and returns the
// printed value.  A successful value is bound to :last.  Failures are
// returned as text prefixed with ParseErrorPrefix or EvalErrorPrefix.  A
// failed parse leaves the session unmodified.  Definitions made before an
// evaluation failure are kept.
func (s *Session) Exec(text string) (result string) {
	defer s.recoverPanic("exec", text, func(err error) {
		result = EvalErrorPrefix + err.Error()
	})
	last := s.runtime.Intern(LastSymbol)
	expr, err := s.runtime.Parse(text)
	if err != nil {
		s.logger.Debug("parse error", zap.Error(err))
		return ParseErrorPrefix + err.Error()
	}
	v, err := s.runtime.Eval(expr)
	if err != nil {
		s.logger.Debug("evaluation error", zap.Error(err))
		return EvalErrorPrefix + err.Error()
	}
	result = s.runtime.Print(v, 0)
	err = s.runtime.SetBinding(last, v, true)
	if err != nil {
		return EvalErrorPrefix + err.Error()
	}
	return result
}

// Load executes every expression in text in order, binding :last after each
// one, and returns their printed values.  Load stops at the first expression
// that fails.  The name labels parse error locations.  Like Exec, Load
// contains panics raised by the interpreter.
func (s *Session) Load(name string, text string) (results []string, err error) {
	defer s.recoverPanic("load", text, func(perr error) {
		err = errors.Wrap(perr, name)
	})
	last := s.runtime.Intern(LastSymbol)
	exprs, err := s.runtime.ParseProgram(name, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse error")
	}
	results = make([]string, 0, len(exprs))
	for i, expr := range exprs {
		v, err := s.runtime.Eval(expr)
		if err != nil {
			return results, errors.Wrapf(err, "%s: expression %d", name, i)
		}
		results = append(results, s.runtime.Print(v, 0))
		err = s.runtime.SetBinding(last, v, true)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// recoverPanic must be deferred.  A recovered panic is logged and handed to
// fail as an internal error.
func (s *Session) recoverPanic(op string, source string, fail func(error)) {
	p := recover()
	if p == nil {
		return
	}
	s.logger.Error("recovered panic during "+op,
		zap.String("source", source),
		zap.Any("panic", p),
		zap.Stack("stack"))
	fail(errors.Errorf("internal error: %v", p))
}

// BindingNames returns the names of the session's variables in definition
// order.
func (s *Session) BindingNames() []string {
	return s.runtime.BindingNames()
}

// ListBindings returns the session's variable names in definition order
// separated by BindingSeparator.
func (s *Session) ListBindings() string {
	return strings.Join(s.BindingNames(), BindingSeparator)
}
