// Package prelude provides the ordered list of definitions evaluated into
// every new session.  A later definition may refer to names bound by earlier
// ones, never the reverse.
package prelude

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Definition is one prelude entry.  Name is informational and is used to
// label bootstrap failures.  Source is a single lisp expression.
type Definition struct {
	Name   string `toml:"name"`
	Source string `toml:"source"`
}

func (d Definition) String() string {
	if d.Name == "" {
		return d.Source
	}
	return fmt.Sprintf("%s: %s", d.Name, d.Source)
}

var standard = []Definition{
	{"closure", "(define closure (lambda (x) (lambda (y) (add x y))))"},
	{"add", "(define add (lambda (x y) (cond (zero? y) x (add (add1 x) (sub1 y)))))"},
	{"mult", "(define mult (lambda (x y) (cond (zero? y) 0 (add (mult x (sub1 y)) x))))"},
	{"filter", "(define filter (lambda (f xs) (cond (null? xs) xs (cond (f (car xs)) (cons (car xs) (filter f (cdr xs))) (filter f (cdr xs))))))"},
	{"map", "(define map (lambda (f xs) (cond (null? xs) xs (cons (f (car xs)) (map f (cdr xs))))))"},
	{"not", "(define not (lambda (t) (cond t #f #t)))"},
	{">", "(define > (lambda (x y) (cond (zero? x) #f (cond (zero? y) #t (> (sub1 x) (sub1 y))))))"},
	{"and", "(define and (lambda (t1 t2) (cond t1 t2 #f)))"},
	// (append l1 l2) puts the elements of l2 in front of l1.
	{"append", "(define append (lambda (l1 l2) (cond (null? l2) l1 (cons (car l2) (append l1 (cdr l2))))))"},
	{"range", "(define range (lambda (start end) (cond (> end start) (cons end (range start (sub1 end))) (list start))))"},
	{"sort", "(define sort (lambda (l) (cond (null? l) l (append (cons (car l) (sort (filter (lambda (x) (> x (car l))) (cdr l)))) (sort (filter (lambda (x) (not (> x (car l)))) (cdr l)))))))"},
	{"or", "(define or (lambda (x y) (cond x #t y)))"},
	{"zip", "(define zip (lambda (x y) (cond (or (null? x) (null? y)) (list) (cons (list (car x) (car y)) (zip (cdr x) (cdr y))))))"},
	{"map2", "(define map2 (lambda (f l) (cond (null? l) l (cons (f (car (cdr (car l))) (car (car l))) (map2 f (cdr l))))))"},
	{"reverse", "(define reverse (lambda (l) (cond (null? l) l (append (list (car l)) (reverse (cdr l))))))"},
	{"!!", "(define !! (lambda (l i) (cond (zero? i) (car l) (!! (cdr l) (sub1 i)))))"},
	{"foldr", "(define foldr (lambda (f xs init) (cond (null? xs) init (foldr f (cdr xs) (f init (car xs))))))"},
}

// Standard returns the standard prelude.  The returned slice is a fresh copy
// and may be modified by the caller.
func Standard() []Definition {
	defs := make([]Definition, len(standard))
	copy(defs, standard)
	return defs
}

// Names returns the Name of each definition in defs.
func Names(defs []Definition) []string {
	names := make([]string, len(defs))
	for i := range defs {
		names[i] = defs[i].Name
	}
	return names
}

type file struct {
	Definition []Definition `toml:"definition"`
}

// Decode reads a prelude from TOML.  Each definition is a [[definition]]
// table with a required source key and an optional name.
//
//	[[definition]]
//	name = "double"
//	source = "(define double (lambda (x) (add x x)))"
func Decode(r io.Reader) ([]Definition, error) {
	var f file
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, errors.Wrap(err, "invalid prelude")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("invalid prelude: unknown key %q", undecoded[0].String())
	}
	for i, def := range f.Definition {
		if def.Source == "" {
			return nil, errors.Errorf("invalid prelude: definition %d has no source", i)
		}
	}
	return f.Definition, nil
}

// LoadFile reads a prelude from the TOML file at path.
func LoadFile(path string) ([]Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open prelude")
	}
	defer f.Close()
	defs, err := Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return defs, nil
}
