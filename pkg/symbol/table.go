// Package symbol implements symbol interning.  A Table assigns each distinct
// name an ID the first time it is seen and returns the same ID for every
// later lookup of that name.  IDs are never reassigned or reused.
//
// Tables are not safe for concurrent use.  A table belongs to a single
// session which is driven by one caller at a time.
package symbol

import "fmt"

// Table maps symbol IDs to strings.
type Table interface {
	// Len returns the number of symbols interned in the table.
	Len() int
	// Intern inserts the given symbol into the table if it is not present and
	// returns its ID.
	Intern(symbol string) ID
	// Symbol returns the symbol associated with id.
	Symbol(id ID) (string, bool)
}

// NewTable returns an empty Table.  IDs are handed out in interning order
// starting at 1 so the zero ID never names a symbol.
func NewTable() Table {
	return newTable()
}

// ResolveUnknown returns a Table that returns diagnostic strings when the
// method Symbol is passed an unknown symbol ID.  The Symbol method on the
// returned Table will always return true and will use fmt.Sprintf to create a
// string representing any symbols unknown to t.  All other methods on the
// returned Table proxy the corresponding methods on t.
func ResolveUnknown(format string, t Table) Table {
	if format == "" {
		format = defaultUnknownResolverFormat
	}
	return &unknownResolver{format, t}
}

const defaultUnknownResolverFormat = "#<SYMBOL %#x>"

type unknownResolver struct {
	format string
	Table
}

// Symbol overrides t.Table.Symbol and uses t.format to describe unknown
// symbols.  Symbol always returns true.
func (t *unknownResolver) Symbol(id ID) (string, bool) {
	s, ok := t.Table.Symbol(id)
	if ok {
		return s, true
	}
	return fmt.Sprintf(t.format, uint32(id)), true
}

type table struct {
	g     IDGen
	names []string // names[id-1] is the symbol for id
	s     map[string]ID
}

var _ Table = (*table)(nil)

func newTable() *table {
	return &table{
		g: NewIDGen(0),
		s: make(map[string]ID),
	}
}

// Len implements the Table interface
func (t *table) Len() int {
	return len(t.names)
}

// Intern implements the Table interface
func (t *table) Intern(s string) ID {
	if id, ok := t.s[s]; ok {
		return id
	}
	id := t.g.NewID()
	t.s[s] = id
	t.names = append(t.names, s)
	return id
}

// Symbol implements the Table interface
func (t *table) Symbol(id ID) (string, bool) {
	if id == 0 || int(id) > len(t.names) {
		return "", false
	}
	return t.names[id-1], true
}
