// Package runtime holds the state of a lisp session and evaluates
// expressions against it.
package runtime

import (
	"fmt"
	"strings"

	"github.com/luthersystems/yalp/pkg/environ"
	"github.com/luthersystems/yalp/pkg/lisp"
	"github.com/luthersystems/yalp/pkg/parser/rdparser"
	"github.com/luthersystems/yalp/pkg/symbol"
	"go.uber.org/zap"
)

// DefaultMaxStackHeight is the default limit on nested (non-tail)
// evaluation.
const DefaultMaxStackHeight = 10000

// SourceName is the file name attached to locations in parse errors.
const SourceName = "command"

// Option is a function that configures a new Runtime.
type Option func(*Runtime) error

// WithMaxStackHeight limits the depth of nested evaluation to n.  Programs
// that nest deeper fail with a stack-overflow error.  Calls in tail position
// do not count against the limit.  Source text is limited to n levels of
// nested lists and quotes.
func WithMaxStackHeight(n int) Option {
	return func(r *Runtime) error {
		if n <= 0 {
			return fmt.Errorf("invalid maximum stack height: %d", n)
		}
		r.MaxStackHeight = n
		return nil
	}
}

// WithLogger makes the runtime write debug logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runtime) error {
		if logger == nil {
			return fmt.Errorf("nil logger")
		}
		r.Logger = logger
		return nil
	}
}

// Runtime is the state of one lisp session.  Runtime contains a symbol table,
// the global variable bindings in definition order, and the set of reserved
// keyword symbols.  A Runtime is not safe for concurrent use.
type Runtime struct {
	Symbols        symbol.Table
	Bindings       environ.OrderedBindings
	Keywords       map[symbol.ID]bool
	MaxStackHeight int
	Logger         *zap.Logger

	forms    map[symbol.ID]formKind
	builtins map[symbol.ID]lisp.LVal
	height   int
}

// New initializes and returns a new Runtime with the provided configuration
// options.  If any error is encountered it will be returned with a nil
// runtime.
func New(options ...Option) (*Runtime, error) {
	r := &Runtime{
		Symbols:        symbol.NewTable(),
		Bindings:       environ.NewBindings(0),
		Keywords:       make(map[symbol.ID]bool),
		MaxStackHeight: DefaultMaxStackHeight,
		Logger:         zap.NewNop(),
		forms:          make(map[symbol.ID]formKind, len(specialForms)),
		builtins:       make(map[symbol.ID]lisp.LVal, len(builtins)),
	}
	for _, fn := range options {
		err := fn(r)
		if err != nil {
			return nil, err
		}
	}
	for _, form := range specialForms {
		r.forms[r.Intern(form.name)] = form.kind
	}
	for _, b := range builtins {
		r.builtins[r.Intern(b.name)] = lisp.Fun(&lisp.FunData{
			Name:    b.name,
			Builtin: b.call(),
		})
	}
	return r, nil
}

// Intern translates name to a symbol.ID and marks the symbol as a reserved
// keyword when it starts with a colon ":".
func (r *Runtime) Intern(name string) symbol.ID {
	id := r.Symbols.Intern(name)
	if strings.HasPrefix(name, ":") {
		r.Keywords[id] = true
	}
	return id
}

// Symbol returns the name of id.
func (r *Runtime) Symbol(id symbol.ID) (string, bool) {
	return r.Symbols.Symbol(id)
}

// IsKeyword returns true if id names a reserved keyword symbol.  Keywords
// cannot be bound with define.
func (r *Runtime) IsKeyword(id symbol.ID) bool {
	return r.Keywords[id]
}

// IsPrimitive returns true if id names a special form or a builtin function.
func (r *Runtime) IsPrimitive(id symbol.ID) bool {
	if _, ok := r.forms[id]; ok {
		return true
	}
	_, ok := r.builtins[id]
	return ok
}

// SetBinding binds id to v in the global bindings.  Unless allowRedefine is
// true SetBinding returns a redefinition error when id is already bound.
// Rebinding a variable keeps its original position in the binding order.
func (r *Runtime) SetBinding(id symbol.ID, v lisp.LVal, allowRedefine bool) error {
	if lisp.IsError(v) {
		return lisp.GoError(v)
	}
	if !allowRedefine {
		if _, ok := r.GetBinding(id); ok {
			return lisp.GoError(lisp.Errorf(lisp.CondRedefinition, "symbol already defined: %s", r.name(id)))
		}
	}
	r.Bindings.Put(id, v)
	return nil
}

// GetBinding returns the global value bound to id.
func (r *Runtime) GetBinding(id symbol.ID) (lisp.LVal, bool) {
	return r.Bindings.Get(id)
}

// BindingNames returns the names of all bound global variables in the order
// they were first defined.
func (r *Runtime) BindingNames() []string {
	names := make([]string, r.Bindings.Len())
	for i := range names {
		names[i] = r.name(r.Bindings.GetVariable(i))
	}
	return names
}

// Parse reads a single expression from text, interning its symbols.
func (r *Runtime) Parse(text string) (lisp.LVal, error) {
	return rdparser.Parse(SourceName, text, r, rdparser.WithMaxDepth(r.MaxStackHeight))
}

// ParseProgram reads every expression in text.  Parse errors are located in
// the named source.
func (r *Runtime) ParseProgram(name string, text string) ([]lisp.LVal, error) {
	return rdparser.ParseProgram(name, text, r, rdparser.WithMaxDepth(r.MaxStackHeight))
}

// Print renders v as source text.  Depth is the nesting depth v is rendered
// at, 0 for a top level value.
func (r *Runtime) Print(v lisp.LVal, depth int) string {
	return lisp.FormatString(v, r.Symbols, depth)
}

func (r *Runtime) name(id symbol.ID) string {
	return symbol.String(id, r.Symbols)
}
