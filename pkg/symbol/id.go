package symbol

// An ID is the stable identity of an interned symbol.  IDs are compared
// directly; two symbols are the same symbol iff their IDs are equal.
type ID uint32

// MaxID is the largest ID a table will hand out.
const MaxID = ^ID(0)

// IDGen is a function that generates unique IDs.
type IDGen interface {
	// NewID returns a unique ID.  It is not specified at the interface level
	// what IDs are returned, only that they are unique.
	NewID() ID
}

// NewIDGen returns a basic IDGen that will generate unique ids from min to
// MaxID.  The returned IDGen will not produce the value min.
func NewIDGen(min ID) IDGen {
	return &gen{lastid: min}
}

type gen struct {
	lastid ID
}

var _ IDGen = (*gen)(nil)

func (g *gen) NewID() ID {
	if g.lastid == MaxID {
		panic("too many ids generated")
	}
	g.lastid++
	return g.lastid
}
