package infer

import (
	"fmt"

	"github.com/script-lang/script/internal/ast"
	"github.com/script-lang/script/internal/diagnostics"
	"github.com/script-lang/script/internal/token"
	"github.com/script-lang/script/internal/types"
)

// Engine walks a program once, inferring types eagerly. It is single-threaded
// per compilation context; independent programs use independent sessions.
type Engine struct {
	sess    *Session
	env     *TypeEnv
	globals map[string]bool
	// typeMap answers the IR builder's resolve(node) query.
	typeMap  map[ast.Expression]types.Type
	captures map[*ast.ClosureLiteral][]string
	retStack []types.Type
	// itemBounds collects trait bounds that ended up on still-generic
	// variables of the current item, to be carried into its scheme.
	itemBounds map[uint32][]string
	work       int
	ufBaseline int
	module     string
}

func NewEngine(sess *Session) *Engine {
	return &Engine{
		sess:     sess,
		env:      NewTypeEnv(),
		globals:  make(map[string]bool),
		typeMap:  make(map[ast.Expression]types.Type),
		captures: make(map[*ast.ClosureLiteral][]string),
	}
}

// pendingFn is a function item between signature pre-declaration and body
// inference.
type pendingFn struct {
	decl   *ast.FunctionDeclaration
	fnType types.TFunc
	scope  map[string]types.Type
	bounds map[uint32][]string
	cached bool
}

// InferProgram type-checks every top-level item. Items fail independently:
// the returned list can hold diagnostics for some items while others are
// fully typed, which is what IDE consumers want.
func (e *Engine) InferProgram(prog *ast.Program) diagnostics.List {
	var diags diagnostics.List
	e.module = prog.File

	// Nominal types first, so forward references resolve.
	for _, item := range prog.Items {
		switch item := item.(type) {
		case *ast.StructDeclaration:
			if err := e.declareStruct(item); err != nil {
				diags.Append(toDiagnostic(err))
			} else {
				e.globals[item.Name.Value] = true
			}
		case *ast.EnumDeclaration:
			if err := e.declareEnum(item); err != nil {
				diags.Append(toDiagnostic(err))
			}
		}
	}

	// Pre-declare function signatures for mutual recursion, consulting the
	// scheme cache where attached.
	var pending []*pendingFn
	for _, item := range prog.Items {
		fd, ok := item.(*ast.FunctionDeclaration)
		if !ok {
			continue
		}
		p, err := e.declareFunction(fd)
		if err != nil {
			diags.Append(toDiagnostic(err))
			continue
		}
		pending = append(pending, p)
	}

	// Infer bodies, each under its own budget and deferred-constraint range.
	for _, p := range pending {
		if p.cached {
			continue
		}
		if err := e.inferFunctionItem(p); err != nil {
			diags.Append(toDiagnostic(err))
			continue
		}
	}

	// Remaining top-level lets.
	for _, item := range prog.Items {
		ls, ok := item.(*ast.LetStatement)
		if !ok {
			continue
		}
		if err := e.inferLetItem(ls); err != nil {
			diags.Append(toDiagnostic(err))
		}
	}

	return diags
}

func (e *Engine) declareFunction(fd *ast.FunctionDeclaration) (*pendingFn, error) {
	name := fd.Name.Value
	fp := fingerprint(fd)
	if e.sess.cache != nil {
		if scheme, ok, err := e.sess.cache.Get(e.module, name, fp); err == nil && ok {
			e.env.Set(name, scheme)
			e.globals[name] = true
			return &pendingFn{decl: fd, cached: true}, nil
		}
	}

	scope := make(map[string]types.Type, len(fd.TypeParams))
	bounds := make(map[uint32][]string)
	for _, tp := range fd.TypeParams {
		fresh := e.sess.FreshVar()
		scope[tp.Name] = fresh
		if len(tp.Bounds) > 0 {
			bounds[fresh.ID] = tp.Bounds
		}
	}

	params := make([]types.Type, len(fd.Parameters))
	for i, p := range fd.Parameters {
		pt, err := e.annotationToType(p.Type, scope)
		if err != nil {
			return nil, withSpan(err, p.Name.Token.Span)
		}
		params[i] = pt
	}
	var ret types.Type
	if fd.ReturnType != nil {
		rt, err := e.annotationToType(fd.ReturnType, scope)
		if err != nil {
			return nil, withSpan(err, fd.Token.Span)
		}
		ret = rt
	} else {
		ret = e.sess.FreshVar()
	}

	fnType := types.TFunc{Params: params, Return: ret}
	// Monomorphic binding during body inference; generalized after.
	e.env.Set(name, MonoScheme(fnType))
	e.globals[name] = true
	return &pendingFn{decl: fd, fnType: fnType, scope: scope, bounds: bounds}, nil
}

func (e *Engine) inferFunctionItem(p *pendingFn) error {
	fd := p.decl
	e.beginItem()
	e.itemBounds = p.bounds
	deferredStart := len(e.sess.deferred)

	bodyEnv := NewEnclosedTypeEnv(e.env)
	for i, param := range fd.Parameters {
		bodyEnv.Set(param.Name.Value, MonoScheme(p.fnType.Params[i]))
	}

	e.retStack = append(e.retStack, p.fnType.Return)
	bodyType, err := e.inferBlock(fd.Body, bodyEnv)
	e.retStack = e.retStack[:len(e.retStack)-1]
	if err != nil {
		e.discardDeferred(deferredStart)
		return err
	}
	if err := e.unifyAt(fd.Token.Span, p.fnType.Return, bodyType); err != nil {
		e.discardDeferred(deferredStart)
		return err
	}

	if err := e.solveDeferred(deferredStart); err != nil {
		return err
	}

	// The item's own monomorphic binding must not pin its variables during
	// generalization.
	e.env.Remove(fd.Name.Value)
	scheme := Generalize(p.fnType, e.sess.UnionFind(), e.env, e.itemBounds)
	e.env.Set(fd.Name.Value, scheme)

	resolved := e.sess.Resolve(p.fnType)
	if types.ContainsVars(resolved) && len(scheme.Vars) == 0 {
		return withSpan(newTypeMismatch(resolved, resolved,
			fmt.Sprintf("cannot fully infer type of %s", fd.Name.Value)), fd.Token.Span)
	}

	if e.sess.cache != nil {
		// Best effort; the cache is an accelerator, not a source of truth.
		_ = e.sess.cache.Put(e.module, fd.Name.Value, fingerprint(fd), scheme)
	}
	return nil
}

func (e *Engine) inferLetItem(ls *ast.LetStatement) error {
	e.beginItem()
	e.itemBounds = make(map[uint32][]string)
	deferredStart := len(e.sess.deferred)

	vt, err := e.inferExpr(ls.Value, e.env)
	if err != nil {
		e.discardDeferred(deferredStart)
		return err
	}
	if ls.Annotation != nil {
		at, err := e.annotationToType(ls.Annotation, nil)
		if err != nil {
			e.discardDeferred(deferredStart)
			return withSpan(err, ls.Token.Span)
		}
		if err := e.unifyAt(ls.Token.Span, at, vt); err != nil {
			e.discardDeferred(deferredStart)
			return err
		}
		vt = at
	}
	if err := e.solveDeferred(deferredStart); err != nil {
		return err
	}
	e.env.Set(ls.Name.Value, Generalize(vt, e.sess.UnionFind(), e.env, e.itemBounds))
	e.globals[ls.Name.Value] = true
	return nil
}

func (e *Engine) beginItem() {
	e.work = 0
	e.ufBaseline = e.sess.UnionFind().WorkUnits()
}

func (e *Engine) discardDeferred(start int) {
	e.sess.deferred = e.sess.deferred[:start]
}

// solveDeferred checks the trait bounds queued since start, now that the
// item's structural types are resolved. Bounds landing on still-generic
// variables are carried into the item's scheme instead of failing.
func (e *Engine) solveDeferred(start int) error {
	queue := e.sess.deferred[start:]
	e.sess.deferred = e.sess.deferred[:start]
	for _, c := range queue {
		switch c.Kind {
		case ConstraintTraitBound:
			if err := e.checkBound(c.Type, c.Trait, c); err != nil {
				return err
			}
		case ConstraintGenericBounds:
			for _, trait := range c.Bounds {
				if err := e.checkBound(c.Var, trait, c); err != nil {
					return err
				}
			}
		case ConstraintEquality:
			if err := e.unifyAt(c.Span, c.Left, c.Right); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) checkBound(t types.Type, trait string, c Constraint) error {
	resolved := e.sess.Resolve(t)
	if tv, ok := resolved.(types.TVar); ok {
		e.itemBounds[tv.ID] = appendBound(e.itemBounds[tv.ID], trait)
		return nil
	}
	if types.ContainsVars(resolved) {
		// Partially resolved; re-queue against the inner variables by
		// checking the structural parts that are concrete already.
		if e.sess.Traits().Implements(resolved, trait) {
			e.sess.Traits().Record(Specialization{Trait: trait, Type: resolved, Span: c.Span})
			return nil
		}
		for _, id := range types.FreeVars(resolved) {
			e.itemBounds[id] = appendBound(e.itemBounds[id], trait)
		}
		return nil
	}
	if !e.sess.Traits().Implements(resolved, trait) {
		return newUnsatisfiedBound(resolved, trait, c.Span)
	}
	e.sess.Traits().Record(Specialization{Trait: trait, Type: resolved, Span: c.Span})
	return nil
}

func appendBound(bounds []string, trait string) []string {
	for _, b := range bounds {
		if b == trait {
			return bounds
		}
	}
	return append(bounds, trait)
}

// ResolveNode answers the IR builder's type query for any expression the
// engine has visited. The result contains no type variables for items that
// type-checked without remaining generics.
func (e *Engine) ResolveNode(expr ast.Expression) (types.Type, bool) {
	t, ok := e.typeMap[expr]
	if !ok {
		return nil, false
	}
	return e.sess.Resolve(t), true
}

// Captures reports the capture list computed for a closure literal, in
// first-use order.
func (e *Engine) Captures(cl *ast.ClosureLiteral) []string {
	return e.captures[cl]
}

// Session exposes the engine's session for callers that need the registry or
// the recorded runtime checks.
func (e *Engine) Session() *Session { return e.sess }

func toDiagnostic(err error) *diagnostics.Diagnostic {
	if te, ok := err.(*TypeError); ok {
		return te.Diagnostic()
	}
	return diagnostics.New(diagnostics.TypeMismatch, token.Span{}, "%s", err.Error())
}
