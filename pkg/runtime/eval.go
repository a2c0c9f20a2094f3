package runtime

import (
	"github.com/luthersystems/yalp/pkg/environ"
	"github.com/luthersystems/yalp/pkg/lisp"
	"github.com/luthersystems/yalp/pkg/parser/rdparser"
	"github.com/luthersystems/yalp/pkg/symbol"
	"go.uber.org/zap"
)

type formKind uint8

const (
	formDefine formKind = iota + 1
	formLambda
	formCond
	formQuote
)

// specialForms are interned in this order by New.
var specialForms = []struct {
	name string
	kind formKind
}{
	{"define", formDefine},
	{"lambda", formLambda},
	{"cond", formCond},
	{rdparser.QuoteSymbol, formQuote},
}

// Eval evaluates expr in the global environment.  Evaluation may add
// global bindings.  Errors are returned as *lisp.ErrorData values so callers
// can inspect their condition.
func (r *Runtime) Eval(expr lisp.LVal) (lisp.LVal, error) {
	r.height = 0
	v := r.eval(nil, expr)
	if err := lisp.GoError(v); err != nil {
		return lisp.Nil(), err
	}
	return v, nil
}

// eval evaluates expr in env.  Expressions in tail position (cond branches
// and closure bodies) are evaluated by looping instead of recursing so they
// do not count against the stack height.
func (r *Runtime) eval(env *environ.Environ, expr lisp.LVal) lisp.LVal {
	r.height++
	defer func() { r.height-- }()
	if r.height > r.MaxStackHeight {
		return lisp.Errorf(lisp.CondStackHeight, "maximum stack height exceeded: %d", r.MaxStackHeight)
	}
	for {
		switch expr.Type() {
		case lisp.LSymbol:
			id, _ := lisp.GetSymbol(expr)
			return r.lookup(env, id)
		case lisp.LCons:
		default:
			return expr
		}
		cells, ok := lisp.Slice(expr)
		if !ok {
			return lisp.Errorf(lisp.CondSyntax, "improper list in expression: %s", r.Print(expr, 0))
		}
		head := cells[0]
		if id, ok := lisp.GetSymbol(head); ok {
			switch r.forms[id] {
			case formQuote:
				return r.evalQuote(cells)
			case formLambda:
				return r.evalLambda(env, cells)
			case formDefine:
				return r.evalDefine(env, cells)
			case formCond:
				branch := r.evalCond(env, cells)
				if lisp.IsError(branch) {
					return branch
				}
				expr = branch
				continue
			}
		}
		f := r.eval(env, head)
		if lisp.IsError(f) {
			return f
		}
		fun, ok := lisp.GetFun(f)
		if !ok {
			return lisp.Errorf(lisp.CondType, "not a function: %s", r.Print(f, 0))
		}
		args := make([]lisp.LVal, len(cells)-1)
		for i, cell := range cells[1:] {
			args[i] = r.eval(env, cell)
			if lisp.IsError(args[i]) {
				return args[i]
			}
		}
		if fun.IsBuiltin() {
			return fun.Builtin(args)
		}
		captured, _ := fun.Env.(*environ.Environ)
		callenv, err := environ.Extend(captured, fun.Formals, args)
		if err != nil {
			return lisp.Errorf(lisp.CondArity, "%s: %v", funName(fun), err)
		}
		env = callenv
		expr = fun.Body
	}
}

func (r *Runtime) lookup(env *environ.Environ, id symbol.ID) lisp.LVal {
	if v, ok := env.Get(id); ok {
		return v
	}
	if v, ok := r.GetBinding(id); ok {
		return v
	}
	if v, ok := r.builtins[id]; ok {
		return v
	}
	if _, ok := r.forms[id]; ok {
		return lisp.Errorf(lisp.CondSyntax, "special form used as a value: %s", r.name(id))
	}
	return lisp.Errorf(lisp.CondUnboundSym, "unbound symbol: %s", r.name(id))
}

// (quote datum)
func (r *Runtime) evalQuote(cells []lisp.LVal) lisp.LVal {
	if len(cells) != 2 {
		return lisp.Errorf(lisp.CondSyntax, "quote: expected 1 argument (got %d)", len(cells)-1)
	}
	return cells[1]
}

// (lambda (params...) body)
func (r *Runtime) evalLambda(env *environ.Environ, cells []lisp.LVal) lisp.LVal {
	if len(cells) != 3 {
		return lisp.Errorf(lisp.CondSyntax, "lambda: expected a parameter list and a body (got %d arguments)", len(cells)-1)
	}
	params, ok := lisp.Slice(cells[1])
	if !ok {
		return lisp.Errorf(lisp.CondSyntax, "lambda: parameters are not a list: %s", r.Print(cells[1], 0))
	}
	formals := make([]symbol.ID, len(params))
	seen := make(map[symbol.ID]bool, len(params))
	for i, p := range params {
		id, ok := lisp.GetSymbol(p)
		if !ok {
			return lisp.Errorf(lisp.CondSyntax, "lambda: parameter is not a symbol: %s", r.Print(p, 0))
		}
		if r.IsKeyword(id) {
			return lisp.Errorf(lisp.CondReserved, "lambda: reserved symbol cannot be a parameter: %s", r.name(id))
		}
		if seen[id] {
			return lisp.Errorf(lisp.CondSyntax, "lambda: duplicate parameter: %s", r.name(id))
		}
		seen[id] = true
		formals[i] = id
	}
	return lisp.Fun(&lisp.FunData{
		Formals: formals,
		Body:    cells[2],
		Env:     env,
	})
}

// (define name expr)
func (r *Runtime) evalDefine(env *environ.Environ, cells []lisp.LVal) lisp.LVal {
	if len(cells) != 3 {
		return lisp.Errorf(lisp.CondSyntax, "define: expected a name and a value (got %d arguments)", len(cells)-1)
	}
	id, ok := lisp.GetSymbol(cells[1])
	if !ok {
		return lisp.Errorf(lisp.CondSyntax, "define: name is not a symbol: %s", r.Print(cells[1], 0))
	}
	if r.IsKeyword(id) || r.IsPrimitive(id) {
		return lisp.Errorf(lisp.CondReserved, "define: reserved symbol cannot be bound: %s", r.name(id))
	}
	if _, ok := r.GetBinding(id); ok {
		return lisp.Errorf(lisp.CondRedefinition, "symbol already defined: %s", r.name(id))
	}
	v := r.eval(env, cells[2])
	if lisp.IsError(v) {
		return v
	}
	if fun, ok := lisp.GetFun(v); ok && fun.Name == "" {
		fun.Name = r.name(id)
	}
	err := r.SetBinding(id, v, false)
	if err != nil {
		return lisp.ErrorCondition(lisp.CondRedefinition, err)
	}
	r.Logger.Debug("defined global", zap.String("symbol", r.name(id)), zap.Stringer("type", v.Type()))
	return v
}

// (cond test then else)
//
// evalCond returns the branch selected by test without evaluating it.
func (r *Runtime) evalCond(env *environ.Environ, cells []lisp.LVal) lisp.LVal {
	if len(cells) != 4 {
		return lisp.Errorf(lisp.CondSyntax, "cond: expected a test and two branches (got %d arguments)", len(cells)-1)
	}
	test := r.eval(env, cells[1])
	if lisp.IsError(test) {
		return test
	}
	truth, ok := lisp.GetBool(test)
	if !ok {
		return lisp.Errorf(lisp.CondType, "cond: test is not a boolean: %s", r.Print(test, 0))
	}
	if truth {
		return cells[2]
	}
	return cells[3]
}

func funName(fun *lisp.FunData) string {
	if fun.Name == "" {
		return "lambda"
	}
	return fun.Name
}
