package ast

import (
	"github.com/script-lang/script/internal/token"
)

// Identifier is a variable reference.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token {
	if i == nil {
		return token.Token{}
	}
	return i.Token
}

// IntegerLiteral is an i32 literal.
type IntegerLiteral struct {
	Token token.Token
	Value int32
}

func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) TokenLiteral() string  { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token { return il.Token }

// FloatLiteral is an f32 literal.
type FloatLiteral struct {
	Token token.Token
	Value float32
}

func (fl *FloatLiteral) expressionNode()       {}
func (fl *FloatLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token { return fl.Token }

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()       {}
func (bl *BooleanLiteral) TokenLiteral() string  { return bl.Token.Lexeme }
func (bl *BooleanLiteral) GetToken() token.Token { return bl.Token }

// StringLiteral is a string literal.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }

// UnitLiteral is the () value.
type UnitLiteral struct {
	Token token.Token
}

func (ul *UnitLiteral) expressionNode()       {}
func (ul *UnitLiteral) TokenLiteral() string  { return ul.Token.Lexeme }
func (ul *UnitLiteral) GetToken() token.Token { return ul.Token }

// PrefixExpression is a unary operator application, e.g. -x or !b.
type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }

// InfixExpression is a binary operator application.
type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()       {}
func (ie *InfixExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token { return ie.Token }

// IfExpression is a conditional. Alternative may be nil, in which case the
// whole expression has type unit.
type IfExpression struct {
	Token       token.Token
	Condition   Expression
	Consequence *BlockStatement
	Alternative *BlockStatement
}

func (ie *IfExpression) expressionNode()       {}
func (ie *IfExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IfExpression) GetToken() token.Token { return ie.Token }

// CallExpression is a function or closure call.
type CallExpression struct {
	Token     token.Token
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }

// ClosureLiteral is an anonymous function. Parameters without annotations get
// fresh type variables during inference. ByRef marks closures whose captures
// are taken by reference instead of by value.
type ClosureLiteral struct {
	Token      token.Token
	Parameters []*Parameter
	Body       *BlockStatement
	ByRef      bool
	Async      bool
}

func (cl *ClosureLiteral) expressionNode()       {}
func (cl *ClosureLiteral) TokenLiteral() string  { return cl.Token.Lexeme }
func (cl *ClosureLiteral) GetToken() token.Token { return cl.Token }

// ArrayLiteral is [e1, e2, ...]; all elements must share one type.
type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()       {}
func (al *ArrayLiteral) TokenLiteral() string  { return al.Token.Lexeme }
func (al *ArrayLiteral) GetToken() token.Token { return al.Token }

// IndexExpression is arr[idx].
type IndexExpression struct {
	Token token.Token
	Left  Expression
	Index Expression
}

func (ix *IndexExpression) expressionNode()       {}
func (ix *IndexExpression) TokenLiteral() string  { return ix.Token.Lexeme }
func (ix *IndexExpression) GetToken() token.Token { return ix.Token }

// StructLiteralField is one field initializer in a struct literal.
type StructLiteralField struct {
	Name  string
	Value Expression
}

// StructLiteral constructs a value of a nominal struct type.
type StructLiteral struct {
	Token  token.Token
	Name   *Identifier
	Fields []StructLiteralField
}

func (sl *StructLiteral) expressionNode()       {}
func (sl *StructLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StructLiteral) GetToken() token.Token { return sl.Token }

// FieldAccess is value.field.
type FieldAccess struct {
	Token token.Token
	Left  Expression
	Field string
}

func (fa *FieldAccess) expressionNode()       {}
func (fa *FieldAccess) TokenLiteral() string  { return fa.Token.Lexeme }
func (fa *FieldAccess) GetToken() token.Token { return fa.Token }
