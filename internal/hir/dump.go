package hir

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	ansiKeyword = "\x1b[35m"
	ansiReset   = "\x1b[0m"
)

// Dump renders n as deterministic pseudo-source. Node ids are not printed, so two
// structurally equal trees dump identically.
func Dump(n Node) string {
	p := &printer{}
	p.node(n)
	return p.sb.String()
}

// DumpColored is Dump with ANSI-highlighted keywords, for terminals.
func DumpColored(n Node) string {
	p := &printer{color: true}
	p.node(n)
	return p.sb.String()
}

type printer struct {
	sb     strings.Builder
	indent int
	color  bool
}

func (p *printer) kw(word string) string {
	if p.color {
		return ansiKeyword + word + ansiReset
	}
	return word
}

func (p *printer) line(format string, args ...interface{}) {
	p.sb.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *printer) node(n Node) {
	switch n := n.(type) {
	case *File:
		p.line("// %s", n.Name)
		for _, sym := range n.Externs {
			p.line("%s %s %s", p.kw("extern"), p.kw("fun"), sym.Signature())
		}
		for _, fn := range n.Functions {
			p.node(fn)
		}
	case *Function:
		p.line("%s %s() {", p.kw("fun"), n.Name)
		p.body(n.Body)
		p.line("}")
	case Statement:
		p.stmt(n)
	}
}

// body prints the contents of a braced region; a Block's own braces are elided.
func (p *printer) body(s Statement) {
	p.indent++
	if b, ok := s.(*Block); ok {
		for _, st := range b.Statements {
			p.stmt(st)
		}
	} else if s != nil {
		p.stmt(s)
	}
	p.indent--
}

func (p *printer) label(l string) string {
	if l == "" {
		return ""
	}
	return l + "@ "
}

func (p *printer) stmt(s Statement) {
	switch s := s.(type) {
	case *Block:
		p.line("{")
		p.body(s)
		p.line("}")
	case *Composite:
		for _, st := range s.Statements {
			p.stmt(st)
		}
	case *If:
		p.line("%s (%s) {", p.kw("if"), p.expr(s.Condition))
		p.body(s.Then)
		if s.Else != nil {
			p.line("} %s {", p.kw("else"))
			p.body(s.Else)
		}
		p.line("}")
	case *WhileLoop:
		p.line("%s%s (%s) {", p.label(s.Label), p.kw("while"), p.expr(s.Condition))
		p.body(s.Body)
		p.line("}")
	case *DoWhileLoop:
		p.line("%s%s {", p.label(s.Label), p.kw("do"))
		p.body(s.Body)
		p.line("} %s (%s)", p.kw("while"), p.expr(s.Condition))
	default:
		p.line("%s", p.inline(s))
	}
}

// inline renders a statement that fits on one line.
func (p *printer) inline(s Statement) string {
	switch s := s.(type) {
	case *Variable:
		kw := p.kw("val")
		if s.Mutable {
			kw = p.kw("var")
		}
		if s.Initializer == nil {
			return fmt.Sprintf("%s %s: %s", kw, s.Name, s.Type)
		}
		return fmt.Sprintf("%s %s: %s = %s", kw, s.Name, s.Type, p.expr(s.Initializer))
	case *SetValue:
		return fmt.Sprintf("%s = %s", s.Variable.Name, p.expr(s.Value))
	case *Break:
		if s.Label != "" {
			return p.kw("break") + "@" + s.Label
		}
		return p.kw("break")
	case *Continue:
		if s.Label != "" {
			return p.kw("continue") + "@" + s.Label
		}
		return p.kw("continue")
	case Expression:
		return p.expr(s)
	default:
		return s.String()
	}
}

func (p *printer) expr(e Expression) string {
	switch e := e.(type) {
	case *Const:
		return constText(e)
	case *GetValue:
		return e.Variable.Name
	case *ImplicitNotNull:
		return p.expr(e.Argument) + "!!"
	case *Call:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = p.expr(a)
		}
		call := fmt.Sprintf("%s(%s)", e.Symbol.Name, strings.Join(args, ", "))
		if e.Receiver != nil {
			return p.receiver(e.Receiver) + "." + call
		}
		return call
	case *Composite:
		parts := make([]string, len(e.Statements))
		for i, s := range e.Statements {
			parts[i] = p.inline(s)
		}
		return "{ " + strings.Join(parts, "; ") + " }"
	default:
		return e.String()
	}
}

func (p *printer) receiver(e Expression) string {
	if c, ok := e.(*Const); ok && c.Value < 0 {
		return "(" + constText(c) + ")"
	}
	return p.expr(e)
}

func constText(c *Const) string {
	switch c.Type.Kind {
	case TypeKindBoolean:
		return strconv.FormatBool(c.Value != 0)
	case TypeKindLong:
		return strconv.FormatInt(c.Value, 10) + "L"
	case TypeKindChar:
		r := rune(uint16(c.Value))
		if r >= 0x20 && r < 0x7f && r != '\'' && r != '\\' {
			return "'" + string(r) + "'"
		}
		return fmt.Sprintf("'\\u%04x'", uint16(c.Value))
	default:
		return strconv.FormatInt(c.Value, 10)
	}
}
