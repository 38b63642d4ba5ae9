package token

import "fmt"

// Position is a location in a source file. Offset is the byte offset from the
// start of the file; Line and Column are 1-based.
type Position struct {
	Line   int
	Column int
	Offset int
}

func NewPosition(line, column, offset int) Position {
	return Position{Line: line, Column: column, Offset: offset}
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open source range attached to diagnostics and AST nodes.
type Span struct {
	Start Position
	End   Position
}

func NewSpan(start, end Position) Span {
	return Span{Start: start, End: end}
}

func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%d:%d-%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// IsZero reports whether the span carries no location information.
func (s Span) IsZero() bool {
	return s == Span{}
}

// Merge returns the smallest span covering both s and other.
func (s Span) Merge(other Span) Span {
	if s.IsZero() {
		return other
	}
	if other.IsZero() {
		return s
	}
	out := s
	if other.Start.Offset < s.Start.Offset {
		out.Start = other.Start
	}
	if other.End.Offset > s.End.Offset {
		out.End = other.End
	}
	return out
}

// Token is the slice of lexer output an AST node keeps for error reporting.
// The lexer itself lives outside this module; nodes only need the lexeme and
// where it came from.
type Token struct {
	Lexeme string
	Span   Span
}
