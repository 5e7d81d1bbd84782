// Package selector builds the JavaScript expressions spliced into rewritten
// call sites: member-access chains and selector arrow functions.
package selector

import "strings"

// Expr is a synthesized JavaScript expression.
type Expr interface {
	write(b *strings.Builder)
}

// Ident is a bare identifier.
type Ident string

// Member is `Object.Property`, or `Object?.Property` when Optional.
type Member struct {
	Object   Expr
	Property string
	Optional bool
}

// Call is `Callee(Args...)`.
type Call struct {
	Callee Expr
	Args   []Expr
}

// Array is an array literal.
type Array struct {
	Elems []Expr
}

// Prop is one `Key: Value` entry of an object literal or pattern.
type Prop struct {
	Key   string
	Value Expr
}

// Object is an object literal. It also prints object patterns whose values
// are identifiers, which is all a selector parameter needs.
type Object struct {
	Props []Prop
}

// Arrow is a single-parameter arrow function with an expression body.
type Arrow struct {
	Param Expr
	Body  Expr
}

// Print renders e as JavaScript source.
func Print(e Expr) string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (id Ident) write(b *strings.Builder) {
	b.WriteString(string(id))
}

func (m *Member) write(b *strings.Builder) {
	m.Object.write(b)
	if m.Optional {
		b.WriteString("?.")
	} else {
		b.WriteByte('.')
	}
	b.WriteString(m.Property)
}

func (c *Call) write(b *strings.Builder) {
	c.Callee.write(b)
	b.WriteByte('(')
	writeList(b, c.Args)
	b.WriteByte(')')
}

func (a *Array) write(b *strings.Builder) {
	b.WriteByte('[')
	writeList(b, a.Elems)
	b.WriteByte(']')
}

func (o *Object) write(b *strings.Builder) {
	if len(o.Props) == 0 {
		b.WriteString("{}")
		return
	}
	b.WriteString("{ ")
	for i, p := range o.Props {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Key)
		b.WriteString(": ")
		p.Value.write(b)
	}
	b.WriteString(" }")
}

func (a *Arrow) write(b *strings.Builder) {
	b.WriteByte('(')
	a.Param.write(b)
	b.WriteString(") => ")
	// An object body needs parentheses or it parses as a block.
	if _, ok := a.Body.(*Object); ok {
		b.WriteByte('(')
		a.Body.write(b)
		b.WriteByte(')')
		return
	}
	a.Body.write(b)
}

func writeList(b *strings.Builder, es []Expr) {
	for i, e := range es {
		if i > 0 {
			b.WriteString(", ")
		}
		e.write(b)
	}
}
