package infer

import (
	"github.com/script-lang/script/internal/ast"
	"github.com/script-lang/script/internal/config"
	"github.com/script-lang/script/internal/types"
)

// annotationToType resolves a surface annotation against the registry.
// paramScope maps in-scope generic parameter names to their representation;
// inside declarations that is a named placeholder, inside bodies a fresh
// variable.
func (e *Engine) annotationToType(ann ast.TypeAnnotation, paramScope map[string]types.Type) (types.Type, error) {
	switch ann := ann.(type) {
	case nil:
		return e.sess.FreshVar(), nil
	case *ast.UnknownAnnotation:
		return types.TUnknown{}, nil
	case *ast.ArrayAnnotation:
		elem, err := e.annotationToType(ann.Elem, paramScope)
		if err != nil {
			return nil, err
		}
		return types.TArray{Elem: elem}, nil
	case *ast.FunctionAnnotation:
		params := make([]types.Type, len(ann.Params))
		for i, p := range ann.Params {
			t, err := e.annotationToType(p, paramScope)
			if err != nil {
				return nil, err
			}
			params[i] = t
		}
		var ret types.Type = types.Unit
		if ann.Return != nil {
			t, err := e.annotationToType(ann.Return, paramScope)
			if err != nil {
				return nil, err
			}
			ret = t
		}
		return types.TFunc{Params: params, Return: ret}, nil
	case *ast.NamedAnnotation:
		if len(ann.Args) == 0 {
			switch ann.Name {
			case "i32":
				return types.I32, nil
			case "f32":
				return types.F32, nil
			case "bool":
				return types.Bool, nil
			case "string":
				return types.String, nil
			case "()", "unit":
				return types.Unit, nil
			}
			if t, ok := paramScope[ann.Name]; ok {
				return t, nil
			}
			if t, ok := e.sess.Registry().Lookup(ann.Name); ok {
				return t, nil
			}
			return nil, newUnknownName(ann.Name, ann.Token.Span)
		}
		args := make([]types.Type, len(ann.Args))
		for i, a := range ann.Args {
			t, err := e.annotationToType(a, paramScope)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		switch ann.Name {
		case config.ArrayTypeName:
			if len(args) == 1 {
				return types.TArray{Elem: args[0]}, nil
			}
		case config.OptionTypeName, config.ResultTypeName:
			return types.TGeneric{Name: ann.Name, Args: args}, nil
		}
		if _, ok := e.sess.Registry().Lookup(ann.Name); ok {
			return types.TGeneric{Name: ann.Name, Args: args}, nil
		}
		return nil, newUnknownName(ann.Name, ann.Token.Span)
	default:
		return e.sess.FreshVar(), nil
	}
}

// placeholderScope represents declared generic parameters as zero-argument
// generics named after the parameter, for storage inside the registry.
func placeholderScope(params []ast.TypeParam) map[string]types.Type {
	scope := make(map[string]types.Type, len(params))
	for _, p := range params {
		scope[p.Name] = types.TGeneric{Name: p.Name}
	}
	return scope
}

// applyNamedSubst replaces parameter placeholders by name. Used when a
// generic struct or enum is instantiated at a use site.
func applyNamedSubst(t types.Type, subst map[string]types.Type) types.Type {
	switch t := t.(type) {
	case types.TGeneric:
		if len(t.Args) == 0 {
			if r, ok := subst[t.Name]; ok {
				return r
			}
		}
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = applyNamedSubst(a, subst)
		}
		return types.TGeneric{Name: t.Name, Args: args}
	case types.TFunc:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = applyNamedSubst(p, subst)
		}
		return types.TFunc{Params: params, Return: applyNamedSubst(t.Return, subst)}
	case types.TArray:
		return types.TArray{Elem: applyNamedSubst(t.Elem, subst)}
	case types.TStruct:
		fields := make([]types.Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = types.Field{Name: f.Name, Type: applyNamedSubst(f.Type, subst)}
		}
		return types.TStruct{Name: t.Name, TypeParams: t.TypeParams, Fields: fields}
	case types.TEnum:
		variants := make([]types.Variant, len(t.Variants))
		for i, v := range t.Variants {
			payload := make([]types.Type, len(v.Payload))
			for j, p := range v.Payload {
				payload[j] = applyNamedSubst(p, subst)
			}
			variants[i] = types.Variant{Name: v.Name, Payload: payload}
		}
		return types.TEnum{Name: t.Name, TypeParams: t.TypeParams, Variants: variants}
	default:
		return t
	}
}

// declareStruct registers a struct before any use site is checked, so
// forward references within the unit resolve.
func (e *Engine) declareStruct(sd *ast.StructDeclaration) error {
	scope := placeholderScope(sd.TypeParams)
	fields := make([]types.Field, len(sd.Fields))
	for i, f := range sd.Fields {
		ft, err := e.annotationToType(f.Type, scope)
		if err != nil {
			return err
		}
		fields[i] = types.Field{Name: f.Name, Type: ft}
	}
	params := make([]string, len(sd.TypeParams))
	for i, p := range sd.TypeParams {
		params[i] = p.Name
	}
	s := types.TStruct{Name: sd.Name.Value, TypeParams: params, Fields: fields}
	return withSpan(e.sess.Registry().RegisterStruct(s, sd.Name.Token.Span), sd.Name.Token.Span)
}

// declareEnum registers an enum and binds each variant constructor in the
// global environment as a function from its payload to the enum type.
func (e *Engine) declareEnum(ed *ast.EnumDeclaration) error {
	scope := placeholderScope(ed.TypeParams)
	variants := make([]types.Variant, len(ed.Variants))
	for i, v := range ed.Variants {
		payload := make([]types.Type, len(v.Payload))
		for j, p := range v.Payload {
			pt, err := e.annotationToType(p, scope)
			if err != nil {
				return err
			}
			payload[j] = pt
		}
		variants[i] = types.Variant{Name: v.Name, Payload: payload}
	}
	params := make([]string, len(ed.TypeParams))
	for i, p := range ed.TypeParams {
		params[i] = p.Name
	}
	en := types.TEnum{Name: ed.Name.Value, TypeParams: params, Variants: variants}
	if err := e.sess.Registry().RegisterEnum(en, ed.Name.Token.Span); err != nil {
		return withSpan(err, ed.Name.Token.Span)
	}

	e.declareEnumCtors(ed, en)
	return nil
}

func (e *Engine) declareEnumCtors(ed *ast.EnumDeclaration, en types.TEnum) {
	// Quantify the enum's generic parameters per constructor, so every use
	// site instantiates independently.
	for _, v := range en.Variants {
		subst := make(map[string]types.Type, len(en.TypeParams))
		vars := make([]uint32, 0, len(en.TypeParams))
		bounds := make(map[uint32][]string)
		for i, p := range en.TypeParams {
			fresh := e.sess.FreshVar()
			subst[p] = fresh
			vars = append(vars, fresh.ID)
			if bs := ed.TypeParams[i].Bounds; len(bs) > 0 {
				bounds[fresh.ID] = bs
			}
		}
		var result types.Type
		if len(en.TypeParams) == 0 {
			result = en
		} else {
			args := make([]types.Type, len(vars))
			for i, id := range vars {
				args[i] = types.TVar{ID: id}
			}
			result = types.TGeneric{Name: en.Name, Args: args}
		}
		payload := make([]types.Type, len(v.Payload))
		for i, p := range v.Payload {
			payload[i] = applyNamedSubst(p, subst)
		}
		var ctor types.Type
		if len(payload) == 0 {
			ctor = result
		} else {
			ctor = types.TFunc{Params: payload, Return: result}
		}
		e.globals[v.Name] = true
		e.env.Set(v.Name, Scheme{Vars: vars, Bounds: bounds, Type: ctor})
	}
}
