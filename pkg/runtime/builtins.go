package runtime

import (
	"github.com/luthersystems/yalp/pkg/lisp"
)

type builtin struct {
	name     string
	arity    int
	variadic bool
	fn       func(name string, args []lisp.LVal) lisp.LVal
}

// call returns the lisp.Builtin for b, checking the number of arguments
// before calling b.fn.
func (b builtin) call() lisp.Builtin {
	return func(args []lisp.LVal) lisp.LVal {
		if !b.variadic && len(args) != b.arity {
			return lisp.Errorf(lisp.CondArity, "%s: function expects %d %s (got %d)",
				b.name, b.arity, plural(b.arity, "argument"), len(args))
		}
		return b.fn(b.name, args)
	}
}

var builtins = []builtin{
	{"add1", 1, false, builtinAdd1},
	{"sub1", 1, false, builtinSub1},
	{"zero?", 1, false, builtinIsZero},
	{"null?", 1, false, builtinIsNull},
	{"car", 1, false, builtinCAR},
	{"cdr", 1, false, builtinCDR},
	{"cons", 2, false, builtinCons},
	{"list", 0, true, builtinList},
	{"eq?", 2, false, builtinIsEq},
	{"atom?", 1, false, builtinIsAtom},
}

func builtinAdd1(name string, args []lisp.LVal) lisp.LVal {
	x, ok := lisp.GetInt(args[0])
	if !ok {
		return typeError(name, "an int", args[0])
	}
	return lisp.Int(x + 1)
}

func builtinSub1(name string, args []lisp.LVal) lisp.LVal {
	x, ok := lisp.GetInt(args[0])
	if !ok {
		return typeError(name, "an int", args[0])
	}
	return lisp.Int(x - 1)
}

func builtinIsZero(name string, args []lisp.LVal) lisp.LVal {
	x, ok := lisp.GetInt(args[0])
	if !ok {
		return typeError(name, "an int", args[0])
	}
	return lisp.Bool(x == 0)
}

func builtinIsNull(name string, args []lisp.LVal) lisp.LVal {
	return lisp.Bool(lisp.IsNil(args[0]))
}

func builtinCAR(name string, args []lisp.LVal) lisp.LVal {
	v, ok := lisp.GetCAR(args[0])
	if !ok {
		return typeError(name, "a pair", args[0])
	}
	return v
}

func builtinCDR(name string, args []lisp.LVal) lisp.LVal {
	v, ok := lisp.GetCDR(args[0])
	if !ok {
		return typeError(name, "a pair", args[0])
	}
	return v
}

func builtinCons(name string, args []lisp.LVal) lisp.LVal {
	return lisp.Cons(args[0], args[1])
}

func builtinList(name string, args []lisp.LVal) lisp.LVal {
	return lisp.List(args...)
}

func builtinIsEq(name string, args []lisp.LVal) lisp.LVal {
	return lisp.Bool(lisp.Equal(args[0], args[1]))
}

func builtinIsAtom(name string, args []lisp.LVal) lisp.LVal {
	return lisp.Bool(args[0].Type() != lisp.LCons)
}

func typeError(name string, expect string, v lisp.LVal) lisp.LVal {
	return lisp.Errorf(lisp.CondType, "%s: argument is not %s: %v", name, expect, v.Type())
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
