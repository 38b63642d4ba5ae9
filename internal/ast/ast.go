package ast

import (
	"github.com/script-lang/script/internal/token"
)

// Node is the base interface for all AST nodes. The parser that produces
// these lives outside this module; inference and lowering only consume them.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of a compilation unit. Items are checked
// independently: a type error in one does not stop inference of the others.
type Program struct {
	File  string
	Items []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Items) > 0 {
		return p.Items[0].TokenLiteral()
	}
	return ""
}

func (p *Program) GetToken() token.Token {
	if len(p.Items) > 0 {
		return p.Items[0].GetToken()
	}
	return token.Token{}
}

// Parameter is one function or closure parameter. Type is nil when the
// parameter carries no annotation and must be inferred.
type Parameter struct {
	Name *Identifier
	Type TypeAnnotation
}

// TypeParam is a generic parameter with its trait bounds, e.g. T: Ord + Eq.
type TypeParam struct {
	Name   string
	Bounds []string
}

// FunctionDeclaration is a named top-level function.
type FunctionDeclaration struct {
	Token      token.Token
	Name       *Identifier
	TypeParams []TypeParam
	Parameters []*Parameter
	ReturnType TypeAnnotation // nil: inferred
	Body       *BlockStatement
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Lexeme }
func (fd *FunctionDeclaration) GetToken() token.Token {
	if fd == nil {
		return token.Token{}
	}
	return fd.Token
}

// StructField is one declared field of a struct.
type StructField struct {
	Name string
	Type TypeAnnotation
}

// StructDeclaration declares a nominal struct type.
type StructDeclaration struct {
	Token      token.Token
	Name       *Identifier
	TypeParams []TypeParam
	Fields     []StructField
}

func (sd *StructDeclaration) statementNode()       {}
func (sd *StructDeclaration) TokenLiteral() string { return sd.Token.Lexeme }
func (sd *StructDeclaration) GetToken() token.Token {
	if sd == nil {
		return token.Token{}
	}
	return sd.Token
}

// EnumVariantDecl is one constructor of an enum declaration.
type EnumVariantDecl struct {
	Name    string
	Payload []TypeAnnotation
}

// EnumDeclaration declares a nominal enum type.
type EnumDeclaration struct {
	Token      token.Token
	Name       *Identifier
	TypeParams []TypeParam
	Variants   []EnumVariantDecl
}

func (ed *EnumDeclaration) statementNode()       {}
func (ed *EnumDeclaration) TokenLiteral() string { return ed.Token.Lexeme }
func (ed *EnumDeclaration) GetToken() token.Token {
	if ed == nil {
		return token.Token{}
	}
	return ed.Token
}

// LetStatement binds a value to a name, optionally annotated.
type LetStatement struct {
	Token      token.Token
	Name       *Identifier
	Annotation TypeAnnotation // nil: inferred
	Value      Expression
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Lexeme }
func (ls *LetStatement) GetToken() token.Token {
	if ls == nil {
		return token.Token{}
	}
	return ls.Token
}

// ReturnStatement returns early from the enclosing function body. Value is
// nil for a bare return (unit).
type ReturnStatement struct {
	Token token.Token
	Value Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}

// ExpressionStatement wraps an expression used in statement position.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}

// BlockStatement is a brace-delimited statement list. As an expression its
// value is the value of the trailing expression statement, or unit.
type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) expressionNode()      {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}
