package infer

import (
	"github.com/script-lang/script/internal/ast"
	"github.com/script-lang/script/internal/config"
	"github.com/script-lang/script/internal/token"
	"github.com/script-lang/script/internal/types"
)

// unifyAt solves one equality constraint eagerly, attributing failures to
// span. Unknown/concrete bridges are recorded as runtime-check markers.
func (e *Engine) unifyAt(span token.Span, a, b types.Type) error {
	if err := e.step(span); err != nil {
		return err
	}
	uf := e.sess.UnionFind()
	before := uf.Bridges()
	if err := uf.Unify(a, b); err != nil {
		return withSpan(err, span)
	}
	if uf.Bridges() == before {
		return nil
	}
	// The unification held only because Unknown bridged somewhere, possibly
	// nested. The fully known side is the shape to check at runtime; two
	// gradual sides leave nothing to check against.
	ra, rb := uf.Resolve(a), uf.Resolve(b)
	aHole, bHole := types.ContainsUnknown(ra), types.ContainsUnknown(rb)
	switch {
	case aHole && !bHole:
		e.sess.RecordCheck(span, rb)
	case bHole && !aHole:
		e.sess.RecordCheck(span, ra)
	}
	return nil
}

// step charges one work unit against the current item's budget.
func (e *Engine) step(span token.Span) error {
	e.work++
	total := e.work + (e.sess.UnionFind().WorkUnits() - e.ufBaseline)
	if total > e.sess.Limits.InferenceWorkBudget {
		return newBudgetExceeded("too many inference steps for one item", span)
	}
	return nil
}

func (e *Engine) record(expr ast.Expression, t types.Type) types.Type {
	e.typeMap[expr] = t
	return t
}

// inferExpr synthesizes a type for expr, generating fresh variables for
// unannotated elements and solving equality constraints as it goes.
func (e *Engine) inferExpr(expr ast.Expression, env *TypeEnv) (types.Type, error) {
	if err := e.step(expr.GetToken().Span); err != nil {
		return nil, err
	}
	switch expr := expr.(type) {
	case *ast.IntegerLiteral:
		return e.record(expr, types.I32), nil
	case *ast.FloatLiteral:
		return e.record(expr, types.F32), nil
	case *ast.BooleanLiteral:
		return e.record(expr, types.Bool), nil
	case *ast.StringLiteral:
		return e.record(expr, types.String), nil
	case *ast.UnitLiteral:
		return e.record(expr, types.Unit), nil
	case *ast.Identifier:
		return e.inferIdentifier(expr, env)
	case *ast.PrefixExpression:
		return e.inferPrefix(expr, env)
	case *ast.InfixExpression:
		return e.inferInfix(expr, env)
	case *ast.IfExpression:
		return e.inferIf(expr, env)
	case *ast.CallExpression:
		return e.inferCall(expr, env)
	case *ast.ClosureLiteral:
		return e.inferClosure(expr, env)
	case *ast.ArrayLiteral:
		return e.inferArray(expr, env)
	case *ast.IndexExpression:
		return e.inferIndex(expr, env)
	case *ast.StructLiteral:
		return e.inferStructLiteral(expr, env)
	case *ast.FieldAccess:
		return e.inferFieldAccess(expr, env)
	case *ast.BlockStatement:
		t, err := e.inferBlock(expr, env)
		if err != nil {
			return nil, err
		}
		return e.record(expr, t), nil
	default:
		return nil, newUnknownName(expr.TokenLiteral(), expr.GetToken().Span)
	}
}

func (e *Engine) inferIdentifier(id *ast.Identifier, env *TypeEnv) (types.Type, error) {
	scheme, ok := env.Get(id.Value)
	if !ok {
		return nil, newUnknownName(id.Value, id.Token.Span)
	}
	// Every reference instantiates the scheme afresh, so two call sites of a
	// generic function never share type variables.
	t, bounds := Instantiate(scheme, e.sess.UnionFind())
	for _, c := range bounds {
		c.Span = id.Token.Span
		e.sess.Defer(c)
	}
	return e.record(id, t), nil
}

func (e *Engine) inferPrefix(pe *ast.PrefixExpression, env *TypeEnv) (types.Type, error) {
	right, err := e.inferExpr(pe.Right, env)
	if err != nil {
		return nil, err
	}
	switch pe.Operator {
	case "!":
		if err := e.unifyAt(pe.Token.Span, right, types.Bool); err != nil {
			return nil, err
		}
		return e.record(pe, types.Bool), nil
	case "-":
		e.sess.Defer(TraitBound(right, config.OrdTraitName, pe.Token.Span))
		return e.record(pe, right), nil
	default:
		return nil, newUnknownName(pe.Operator, pe.Token.Span)
	}
}

func (e *Engine) inferInfix(ie *ast.InfixExpression, env *TypeEnv) (types.Type, error) {
	left, err := e.inferExpr(ie.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := e.inferExpr(ie.Right, env)
	if err != nil {
		return nil, err
	}
	span := ie.Token.Span
	switch ie.Operator {
	case "+", "-", "*", "/":
		if err := e.unifyAt(span, left, right); err != nil {
			return nil, err
		}
		return e.record(ie, left), nil
	case "==", "!=":
		if err := e.unifyAt(span, left, right); err != nil {
			return nil, err
		}
		e.sess.Defer(TraitBound(left, config.EqTraitName, span))
		return e.record(ie, types.Bool), nil
	case "<", "<=", ">", ">=":
		if err := e.unifyAt(span, left, right); err != nil {
			return nil, err
		}
		e.sess.Defer(TraitBound(left, config.OrdTraitName, span))
		return e.record(ie, types.Bool), nil
	case "&&", "||":
		if err := e.unifyAt(span, left, types.Bool); err != nil {
			return nil, err
		}
		if err := e.unifyAt(span, right, types.Bool); err != nil {
			return nil, err
		}
		return e.record(ie, types.Bool), nil
	default:
		return nil, newUnknownName(ie.Operator, span)
	}
}

func (e *Engine) inferIf(ie *ast.IfExpression, env *TypeEnv) (types.Type, error) {
	cond, err := e.inferExpr(ie.Condition, env)
	if err != nil {
		return nil, err
	}
	if err := e.unifyAt(ie.Condition.GetToken().Span, cond, types.Bool); err != nil {
		return nil, err
	}
	cons, err := e.inferBlock(ie.Consequence, NewEnclosedTypeEnv(env))
	if err != nil {
		return nil, err
	}
	if ie.Alternative == nil {
		// Without an else branch the conditional is a statement; its value
		// is unit regardless of the consequence's type.
		return e.record(ie, types.Unit), nil
	}
	alt, err := e.inferBlock(ie.Alternative, NewEnclosedTypeEnv(env))
	if err != nil {
		return nil, err
	}
	if err := e.unifyAt(ie.Token.Span, cons, alt); err != nil {
		return nil, err
	}
	return e.record(ie, cons), nil
}

func (e *Engine) inferCall(ce *ast.CallExpression, env *TypeEnv) (types.Type, error) {
	fn, err := e.inferExpr(ce.Function, env)
	if err != nil {
		return nil, err
	}
	args := make([]types.Type, len(ce.Arguments))
	for i, a := range ce.Arguments {
		at, err := e.inferExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = at
	}
	ret := e.sess.FreshVar()
	if err := e.unifyAt(ce.Token.Span, fn, types.TFunc{Params: args, Return: ret}); err != nil {
		return nil, err
	}
	return e.record(ce, ret), nil
}

func (e *Engine) inferClosure(cl *ast.ClosureLiteral, env *TypeEnv) (types.Type, error) {
	closureEnv := NewEnclosedTypeEnv(env)
	params := make([]types.Type, len(cl.Parameters))
	bound := make(map[string]bool, len(cl.Parameters))
	for i, p := range cl.Parameters {
		pt, err := e.annotationToType(p.Type, nil)
		if err != nil {
			return nil, withSpan(err, p.Name.Token.Span)
		}
		params[i] = pt
		closureEnv.Set(p.Name.Value, MonoScheme(pt))
		bound[p.Name.Value] = true
	}
	// Returns in the body belong to the closure, not to whatever function
	// encloses the literal.
	ret := types.Type(e.sess.FreshVar())
	e.retStack = append(e.retStack, ret)
	body, err := e.inferBlock(cl.Body, closureEnv)
	e.retStack = e.retStack[:len(e.retStack)-1]
	if err != nil {
		return nil, err
	}
	if err := e.unifyAt(cl.Token.Span, ret, body); err != nil {
		return nil, err
	}

	// Capture analysis: the closure captures exactly the free variables of
	// its body that are neither parameters nor top-level names.
	free := ast.FreeVariables(cl.Body, bound)
	captures := make([]string, 0, len(free))
	for _, name := range free {
		if !e.globals[name] {
			captures = append(captures, name)
		}
	}
	e.captures[cl] = captures

	return e.record(cl, types.TFunc{Params: params, Return: ret}), nil
}

func (e *Engine) inferArray(al *ast.ArrayLiteral, env *TypeEnv) (types.Type, error) {
	elem := types.Type(e.sess.FreshVar())
	for _, el := range al.Elements {
		et, err := e.inferExpr(el, env)
		if err != nil {
			return nil, err
		}
		if err := e.unifyAt(el.GetToken().Span, elem, et); err != nil {
			return nil, err
		}
	}
	return e.record(al, types.TArray{Elem: elem}), nil
}

func (e *Engine) inferIndex(ix *ast.IndexExpression, env *TypeEnv) (types.Type, error) {
	left, err := e.inferExpr(ix.Left, env)
	if err != nil {
		return nil, err
	}
	idx, err := e.inferExpr(ix.Index, env)
	if err != nil {
		return nil, err
	}
	elem := e.sess.FreshVar()
	if err := e.unifyAt(ix.Token.Span, left, types.TArray{Elem: elem}); err != nil {
		return nil, err
	}
	if err := e.unifyAt(ix.Index.GetToken().Span, idx, types.I32); err != nil {
		return nil, err
	}
	return e.record(ix, elem), nil
}

func (e *Engine) inferStructLiteral(sl *ast.StructLiteral, env *TypeEnv) (types.Type, error) {
	decl, ok := e.sess.Registry().LookupStruct(sl.Name.Value)
	if !ok {
		return nil, newUnknownName(sl.Name.Value, sl.Name.Token.Span)
	}
	subst := make(map[string]types.Type, len(decl.TypeParams))
	for _, p := range decl.TypeParams {
		subst[p] = e.sess.FreshVar()
	}
	if len(sl.Fields) != len(decl.Fields) {
		return nil, newTypeMismatch(decl, types.TStruct{Name: sl.Name.Value},
			"struct literal field count")
	}
	for _, f := range sl.Fields {
		declared, ok := decl.FieldType(f.Name)
		if !ok {
			return nil, newUnknownName(sl.Name.Value+"."+f.Name, sl.Name.Token.Span)
		}
		vt, err := e.inferExpr(f.Value, env)
		if err != nil {
			return nil, err
		}
		want := applyNamedSubst(declared, subst)
		if err := e.unifyAt(f.Value.GetToken().Span, want, vt); err != nil {
			return nil, err
		}
	}
	if len(decl.TypeParams) == 0 {
		return e.record(sl, decl), nil
	}
	args := make([]types.Type, len(decl.TypeParams))
	for i, p := range decl.TypeParams {
		args[i] = subst[p]
	}
	return e.record(sl, types.TGeneric{Name: decl.Name, Args: args}), nil
}

func (e *Engine) inferFieldAccess(fa *ast.FieldAccess, env *TypeEnv) (types.Type, error) {
	left, err := e.inferExpr(fa.Left, env)
	if err != nil {
		return nil, err
	}
	resolved := e.sess.Resolve(left)
	switch t := resolved.(type) {
	case types.TStruct:
		ft, ok := t.FieldType(fa.Field)
		if !ok {
			return nil, newUnknownName(t.Name+"."+fa.Field, fa.Token.Span)
		}
		return e.record(fa, ft), nil
	case types.TGeneric:
		decl, ok := e.sess.Registry().LookupStruct(t.Name)
		if !ok || len(decl.TypeParams) != len(t.Args) {
			return nil, withSpan(newTypeMismatch(decl, t, "field access"), fa.Token.Span)
		}
		subst := make(map[string]types.Type, len(decl.TypeParams))
		for i, p := range decl.TypeParams {
			subst[p] = t.Args[i]
		}
		ft, ok := decl.FieldType(fa.Field)
		if !ok {
			return nil, newUnknownName(t.Name+"."+fa.Field, fa.Token.Span)
		}
		return e.record(fa, applyNamedSubst(ft, subst)), nil
	case types.TUnknown:
		// Dynamic access; checked at runtime.
		e.sess.RecordCheck(fa.Token.Span, types.TUnknown{})
		return e.record(fa, types.TUnknown{}), nil
	default:
		return nil, withSpan(
			newTypeMismatch(types.TStruct{Name: "struct"}, resolved, "field access on non-struct"),
			fa.Token.Span)
	}
}

// inferBlock types a statement list; the block's value is the value of its
// trailing expression statement, or unit.
func (e *Engine) inferBlock(block *ast.BlockStatement, env *TypeEnv) (types.Type, error) {
	var last types.Type = types.Unit
	for i, stmt := range block.Statements {
		switch stmt := stmt.(type) {
		case *ast.LetStatement:
			vt, err := e.inferExpr(stmt.Value, env)
			if err != nil {
				return nil, err
			}
			if stmt.Annotation != nil {
				at, err := e.annotationToType(stmt.Annotation, nil)
				if err != nil {
					return nil, withSpan(err, stmt.Token.Span)
				}
				if err := e.unifyAt(stmt.Token.Span, at, vt); err != nil {
					return nil, err
				}
				vt = at
			}
			env.Set(stmt.Name.Value, MonoScheme(vt))
			last = types.Unit
		case *ast.ReturnStatement:
			var rt types.Type = types.Unit
			if stmt.Value != nil {
				var err error
				rt, err = e.inferExpr(stmt.Value, env)
				if err != nil {
					return nil, err
				}
			}
			if len(e.retStack) > 0 {
				want := e.retStack[len(e.retStack)-1]
				if err := e.unifyAt(stmt.Token.Span, want, rt); err != nil {
					return nil, err
				}
			}
			// A trailing return is the block's value; control never reaches
			// past it.
			if i == len(block.Statements)-1 {
				last = rt
			} else {
				last = types.Unit
			}
		case *ast.ExpressionStatement:
			t, err := e.inferExpr(stmt.Expression, env)
			if err != nil {
				return nil, err
			}
			if i == len(block.Statements)-1 {
				last = t
			} else {
				last = types.Unit
			}
		default:
			return nil, newUnknownName(stmt.TokenLiteral(), stmt.GetToken().Span)
		}
	}
	return last, nil
}
