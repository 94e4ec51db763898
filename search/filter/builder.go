package filter

// Builder accumulates a filter expression through fluent combinators,
// mirroring the teacher's ExprBuilder (ai/vectorstore/filter/builder.go):
// a single `err` field short-circuits the whole chain so a caller can defer
// error checking to Build().
type Builder struct {
	expr Expr
	err  error
}

// New starts an empty builder.
func New() *Builder {
	return &Builder{}
}

// EQ, NEQ, GT, GTE, LT, LTE add `field OP value` as a standalone expression
// or AND it onto whatever the builder already holds.
func (b *Builder) EQ(field string, value any) *Builder  { return b.compare(field, OpEQ, value) }
func (b *Builder) NEQ(field string, value any) *Builder { return b.compare(field, OpNEQ, value) }
func (b *Builder) GT(field string, value any) *Builder  { return b.compare(field, OpGT, value) }
func (b *Builder) GTE(field string, value any) *Builder { return b.compare(field, OpGTE, value) }
func (b *Builder) LT(field string, value any) *Builder  { return b.compare(field, OpLT, value) }
func (b *Builder) LTE(field string, value any) *Builder { return b.compare(field, OpLTE, value) }

// In adds `field IN (values...)`.
func (b *Builder) In(field string, values ...any) *Builder {
	return b.compare(field, OpIn, values)
}

func (b *Builder) compare(field string, op Op, value any) *Builder {
	if b.err != nil {
		return b
	}
	cmp := &Comparison{Field: &Ident{Name: field}, Op: op, Value: &Literal{Value: value}}
	b.combine(cmp)
	return b
}

func (b *Builder) combine(next Expr) {
	if b.expr == nil {
		b.expr = next
		return
	}
	b.expr = &Logical{Op: OpAnd, Left: b.expr, Right: next}
}

// And explicitly ANDs two already-built expressions together.
func (b *Builder) And(other *Builder) *Builder {
	if b.err != nil {
		return b
	}
	if other.err != nil {
		b.err = other.err
		return b
	}
	b.combine(other.expr)
	return b
}

// Or ORs the builder's current expression with other's.
func (b *Builder) Or(other *Builder) *Builder {
	if b.err != nil {
		return b
	}
	if other.err != nil {
		b.err = other.err
		return b
	}
	if b.expr == nil {
		b.expr = other.expr
		return b
	}
	b.expr = &Logical{Op: OpOr, Left: b.expr, Right: other.expr}
	return b
}

// Not negates the builder's current expression in place.
func (b *Builder) Not() *Builder {
	if b.err != nil || b.expr == nil {
		return b
	}
	b.expr = &Logical{Op: OpNot, Left: b.expr}
	return b
}

// Build returns the accumulated expression, or any error recorded along
// the way.
func (b *Builder) Build() (Expr, error) {
	return b.expr, b.err
}
