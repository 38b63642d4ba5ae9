package ast

import (
	"strings"

	"github.com/script-lang/script/internal/token"
)

// TypeAnnotation is a surface-level type written in source. Annotations are
// resolved against the session's type registry during inference; they are not
// the internal Type representation.
type TypeAnnotation interface {
	annotationNode()
	AnnotationString() string
	GetToken() token.Token
}

// NamedAnnotation names a primitive, struct, enum, or generic application:
// i32, Point, Option<i32>.
type NamedAnnotation struct {
	Token token.Token
	Name  string
	Args  []TypeAnnotation
}

func (na *NamedAnnotation) annotationNode()       {}
func (na *NamedAnnotation) GetToken() token.Token { return na.Token }
func (na *NamedAnnotation) AnnotationString() string {
	if len(na.Args) == 0 {
		return na.Name
	}
	args := make([]string, len(na.Args))
	for i, a := range na.Args {
		args[i] = a.AnnotationString()
	}
	return na.Name + "<" + strings.Join(args, ", ") + ">"
}

// FunctionAnnotation is fn(params) -> ret.
type FunctionAnnotation struct {
	Token  token.Token
	Params []TypeAnnotation
	Return TypeAnnotation
}

func (fa *FunctionAnnotation) annotationNode()       {}
func (fa *FunctionAnnotation) GetToken() token.Token { return fa.Token }
func (fa *FunctionAnnotation) AnnotationString() string {
	params := make([]string, len(fa.Params))
	for i, p := range fa.Params {
		params[i] = p.AnnotationString()
	}
	ret := "()"
	if fa.Return != nil {
		ret = fa.Return.AnnotationString()
	}
	return "fn(" + strings.Join(params, ", ") + ") -> " + ret
}

// ArrayAnnotation is [elem].
type ArrayAnnotation struct {
	Token token.Token
	Elem  TypeAnnotation
}

func (aa *ArrayAnnotation) annotationNode()       {}
func (aa *ArrayAnnotation) GetToken() token.Token { return aa.Token }
func (aa *ArrayAnnotation) AnnotationString() string {
	return "[" + aa.Elem.AnnotationString() + "]"
}

// UnknownAnnotation is the explicit gradual-typing annotation.
type UnknownAnnotation struct {
	Token token.Token
}

func (ua *UnknownAnnotation) annotationNode()          {}
func (ua *UnknownAnnotation) GetToken() token.Token    { return ua.Token }
func (ua *UnknownAnnotation) AnnotationString() string { return "unknown" }
