package ast

// FreeVariables returns the names referenced inside expr that are not bound
// within it and not listed in bound, in first-use order. This is the capture
// analysis for closures: a closure captures exactly its free variables, never
// its own parameters.
func FreeVariables(expr Expression, bound map[string]bool) []string {
	c := &freeVarCollector{
		bound: make(map[string]bool, len(bound)),
		seen:  make(map[string]bool),
	}
	for name := range bound {
		c.bound[name] = true
	}
	c.expr(expr)
	return c.free
}

type freeVarCollector struct {
	bound map[string]bool
	seen  map[string]bool
	free  []string
}

func (c *freeVarCollector) record(name string) {
	if c.bound[name] || c.seen[name] {
		return
	}
	c.seen[name] = true
	c.free = append(c.free, name)
}

// scoped runs f with additional bindings, restoring the previous scope after.
func (c *freeVarCollector) scoped(names []string, f func()) {
	added := make([]string, 0, len(names))
	for _, name := range names {
		if !c.bound[name] {
			c.bound[name] = true
			added = append(added, name)
		}
	}
	f()
	for _, name := range added {
		delete(c.bound, name)
	}
}

func (c *freeVarCollector) expr(e Expression) {
	switch e := e.(type) {
	case nil:
	case *Identifier:
		c.record(e.Value)
	case *PrefixExpression:
		c.expr(e.Right)
	case *InfixExpression:
		c.expr(e.Left)
		c.expr(e.Right)
	case *IfExpression:
		c.expr(e.Condition)
		c.block(e.Consequence)
		if e.Alternative != nil {
			c.block(e.Alternative)
		}
	case *CallExpression:
		c.expr(e.Function)
		for _, arg := range e.Arguments {
			c.expr(arg)
		}
	case *ClosureLiteral:
		names := make([]string, 0, len(e.Parameters))
		for _, p := range e.Parameters {
			names = append(names, p.Name.Value)
		}
		c.scoped(names, func() { c.block(e.Body) })
	case *ArrayLiteral:
		for _, el := range e.Elements {
			c.expr(el)
		}
	case *IndexExpression:
		c.expr(e.Left)
		c.expr(e.Index)
	case *StructLiteral:
		for _, f := range e.Fields {
			c.expr(f.Value)
		}
	case *FieldAccess:
		c.expr(e.Left)
	case *BlockStatement:
		c.block(e)
	}
}

func (c *freeVarCollector) block(b *BlockStatement) {
	if b == nil {
		return
	}
	// let-bindings shadow from the binding point onward.
	var added []string
	for _, stmt := range b.Statements {
		switch stmt := stmt.(type) {
		case *LetStatement:
			c.expr(stmt.Value)
			name := stmt.Name.Value
			if !c.bound[name] {
				c.bound[name] = true
				added = append(added, name)
			}
		case *ReturnStatement:
			c.expr(stmt.Value)
		case *ExpressionStatement:
			c.expr(stmt.Expression)
		}
	}
	for _, name := range added {
		delete(c.bound, name)
	}
}
