package lisp

import (
	"strconv"
	"strings"

	"github.com/luthersystems/yalp/pkg/symbol"
)

// MaxFormatDepth is the deepest nesting FormatString will render.  Anything nested
// deeper is written as "...".
const MaxFormatDepth = 512

// FormatString returns a source-code representation of v using table to
// translate symbols.  Depth is the nesting depth v is rendered at; top level
// values are formatted at depth 0.
func FormatString(v LVal, table symbol.Table, depth int) string {
	var b strings.Builder
	p := &printer{b: &b, table: table}
	p.format(v, depth)
	return b.String()
}

type printer struct {
	b     *strings.Builder
	table symbol.Table
}

func (p *printer) format(v LVal, depth int) {
	if depth > MaxFormatDepth {
		p.b.WriteString("...")
		return
	}
	switch v.Type() {
	case LNil:
		p.b.WriteString("()")
	case LSymbol:
		id, _ := GetSymbol(v)
		p.b.WriteString(symbol.String(id, p.table))
	case LInt:
		x, _ := GetInt(v)
		p.b.WriteString(strconv.Itoa(x))
	case LBool:
		if truth, _ := GetBool(v); truth {
			p.b.WriteString("#t")
		} else {
			p.b.WriteString("#f")
		}
	case LCons:
		p.formatCons(v, depth)
	case LFun:
		p.formatFun(v.Native.(*FunData), depth)
	case LError:
		data := v.Native.(*ErrorData)
		p.b.WriteString("#<error ")
		p.b.WriteString(data.Condition)
		p.b.WriteString(": ")
		p.b.WriteString(data.Error())
		p.b.WriteString(">")
	default:
		p.b.WriteString("#<invalid ")
		p.b.WriteString(v.Type().String())
		p.b.WriteString(">")
	}
}

func (p *printer) formatCons(v LVal, depth int) {
	p.b.WriteString("(")
	data := MustCons(v)
	for {
		p.format(data.CAR, depth+1)
		if IsNil(data.CDR) {
			break
		}
		next, ok := GetConsData(data.CDR)
		if !ok {
			p.b.WriteString(" . ")
			p.format(data.CDR, depth+1)
			break
		}
		p.b.WriteString(" ")
		data = next
	}
	p.b.WriteString(")")
}

func (p *printer) formatFun(fun *FunData, depth int) {
	if fun.IsBuiltin() {
		p.b.WriteString("#<builtin ")
		p.b.WriteString(fun.Name)
		p.b.WriteString(">")
		return
	}
	p.b.WriteString("(lambda (")
	for i, id := range fun.Formals {
		if i > 0 {
			p.b.WriteString(" ")
		}
		p.b.WriteString(symbol.String(id, p.table))
	}
	p.b.WriteString(") ")
	p.format(fun.Body, depth+1)
	p.b.WriteString(")")
}
