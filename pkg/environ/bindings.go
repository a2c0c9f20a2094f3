package environ

import (
	"fmt"

	"github.com/luthersystems/yalp/pkg/lisp"
	"github.com/luthersystems/yalp/pkg/symbol"
)

// Bindings is a set of variable bindings (e.g. function arguments).
type Bindings interface {
	// Len returns the number of variables bound
	Len() int
	// Get returns the value bound to the given symbol.
	Get(symbol.ID) (lisp.LVal, bool)
	// Put creates or updates a binding for the given symbol with the given
	// value.
	Put(symbol.ID, lisp.LVal)
}

// OrderedBindings are Bindings that remember the order variables were first
// bound in and support integer indexing for variables.
type OrderedBindings interface {
	Bindings
	// GetVariable returns the variable at the given index.
	GetVariable(int) symbol.ID
	// GetIndex returns the value bound to the variable at the given index.
	GetIndex(int) lisp.LVal
	// PutIndex updates the variable at the given index with the given value.
	PutIndex(int, lisp.LVal)
}

// NewBindings creates and initializes a new set of variable bindings that has
// initial capacity to hold n values.
func NewBindings(n int) OrderedBindings {
	return newBindings(n)
}

type bindingPair struct {
	name  symbol.ID
	value lisp.LVal
}

type bindings struct {
	pairs []bindingPair
	index map[symbol.ID]int
}

var _ OrderedBindings = (*bindings)(nil)

func newBindings(n int) *bindings {
	return &bindings{
		pairs: make([]bindingPair, 0, n),
		index: make(map[symbol.ID]int, n),
	}
}

// NewBindingsZip pairs each variable in vars with the value at the same
// index of vals.  NewBindingsZip returns an error if vars and vals do not
// have equal lengths.
func NewBindingsZip(vars []symbol.ID, vals []lisp.LVal) (Bindings, error) {
	if len(vars) != len(vals) {
		return nil, fmt.Errorf("function expects %d arguments (got %d)", len(vars), len(vals))
	}
	s := newBindings(len(vars))
	for i := range vars {
		s.Put(vars[i], vals[i])
	}
	return s, nil
}

// Len returns the number of symbols bound.
func (s *bindings) Len() int {
	return len(s.pairs)
}

// GetVariable returns the variable at index i.
func (s *bindings) GetVariable(i int) symbol.ID {
	return s.pairs[i].name
}

// GetIndex returns the value at index i.
func (s *bindings) GetIndex(i int) lisp.LVal {
	return s.pairs[i].value
}

// Get returns the value bound to variable.
func (s *bindings) Get(variable symbol.ID) (lisp.LVal, bool) {
	i, ok := s.index[variable]
	if !ok {
		return lisp.Nil(), false
	}
	return s.pairs[i].value, true
}

// PutIndex rebinds the variable at index i to v.
func (s *bindings) PutIndex(i int, v lisp.LVal) {
	s.pairs[i].value = v
}

// Put binds variable to v.  If variable was previously bound its entry will be
// updated in place, keeping its original position.  Otherwise Put creates a
// new variable binding at the end.
func (s *bindings) Put(variable symbol.ID, v lisp.LVal) {
	i, ok := s.index[variable]
	if ok {
		s.PutIndex(i, v)
		return
	}
	s.index[variable] = len(s.pairs)
	s.pairs = append(s.pairs, bindingPair{variable, v})
}
