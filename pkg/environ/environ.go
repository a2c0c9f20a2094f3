// Package environ implements variable bindings.  OrderedBindings back a
// session's global variables; an Environ chain holds the lexical variables
// captured by closures.
package environ

import (
	"github.com/luthersystems/yalp/pkg/lisp"
	"github.com/luthersystems/yalp/pkg/symbol"
)

// Environ is a lexical environment.  Environ contains local symbol bindings
// and a parent environment.  Environ is in the scope of its parent's bindings.
// The nil *Environ is the empty environment.
type Environ struct {
	parent   *Environ
	bindings Bindings
}

// Extend returns a child of parent binding each of vars to the value at the
// same index of vals.  A nil parent extends the empty environment.
func Extend(parent *Environ, vars []symbol.ID, vals []lisp.LVal) (*Environ, error) {
	bindings, err := NewBindingsZip(vars, vals)
	if err != nil {
		return nil, err
	}
	return &Environ{
		parent:   parent,
		bindings: bindings,
	}, nil
}

// Get returns the value bound to the given symbol in env or the nearest
// ancestor binding it.
func (env *Environ) Get(id symbol.ID) (lisp.LVal, bool) {
	for ; env != nil; env = env.parent {
		v, ok := env.bindings.Get(id)
		if ok {
			return v, true
		}
	}
	return lisp.Nil(), false
}
