package lisp

import "fmt"

// ConsData is the container that backs LCons values.
type ConsData struct {
	CAR LVal
	CDR LVal
}

func makeCons(data *ConsData) LVal {
	return LVal{
		LTypeData: Type(LCons),
		Native:    data,
	}
}

// Cons returns a new LCons value from head and tail.  If tail is a list then
// Cons returns a list as well.
// 	(cons head tail)
func Cons(head, tail LVal) LVal {
	return makeCons(&ConsData{
		CAR: head,
		CDR: tail,
	})
}

// GetConsData returns ConsData from v.
// GetConsData returns false if v is not LCons.
func GetConsData(v LVal) (*ConsData, bool) {
	if v.Type() != LCons {
		return nil, false
	}
	return v.Native.(*ConsData), true
}

// MustCons returns the ConsData from v.
// MustCons panics if v.Type() is not LCons.
func MustCons(v LVal) *ConsData {
	v.mustBeType(LCons)
	return v.Native.(*ConsData)
}

// GetCAR returns the head of v.  GetCAR returns false if v is not LCons.
func GetCAR(v LVal) (LVal, bool) {
	data, ok := GetConsData(v)
	if !ok {
		return Nil(), false
	}
	return data.CAR, true
}

// GetCDR returns the tail of v.  GetCDR returns false if v is not LCons.
func GetCDR(v LVal) (LVal, bool) {
	data, ok := GetConsData(v)
	if !ok {
		return Nil(), false
	}
	return data.CDR, true
}

// List returns a list containing the elements of v.  The cells of the list
// are allocated in one block.
func List(v ...LVal) LVal {
	if len(v) == 0 {
		return Nil()
	}
	cons := make([]ConsData, len(v))
	lis := Nil()
	for i := len(v) - 1; i >= 0; i-- {
		cons[i].CAR = v[i]
		cons[i].CDR = lis
		lis = makeCons(&cons[i])
	}
	return lis
}

// Len performs an efficient iteration of list v to compute its length.
// Len returns false if v is not a proper list.
func Len(v LVal) (int, bool) {
	n := 0
	for !IsNil(v) {
		data, ok := GetConsData(v)
		if !ok {
			return n, false
		}
		v = data.CDR
		n++
	}
	return n, true
}

// Slice collects the elements of list v into a slice.  Slice returns false
// if v is not a proper list.
func Slice(v LVal) ([]LVal, bool) {
	var s []LVal
	it := NewListIterator(v)
	for it.Next() {
		s = append(s, it.Value())
	}
	return s, it.Err() == nil
}

// ListIterator iterates through cons lists
type ListIterator struct {
	v    LVal
	rest LVal
	err  error
}

// NewListIterator returns a ListIterator that will iterate through list v.
func NewListIterator(v LVal) *ListIterator {
	return &ListIterator{
		v:    Nil(),
		rest: v,
	}
}

// Value returns the iteration's current value.  Value will return LNil if Next
// has not been called.
func (it *ListIterator) Value() LVal {
	return it.v
}

// Next advances the iterator to the next list element.  Next returns false if
// iteration terminated, either because the list had no more elements or
// because an non-list value was encountered.
func (it *ListIterator) Next() bool {
	if IsNil(it.rest) || it.err != nil {
		return false
	}
	data, ok := GetConsData(it.rest)
	if !ok {
		it.err = fmt.Errorf("not a list: %v", it.rest.Type())
		return false
	}
	it.v = data.CAR
	it.rest = data.CDR
	return true
}

// Err returns a non-nil error if the iteration encountered a non-list value
// terminating the cons chain.
func (it *ListIterator) Err() error {
	return it.err
}
