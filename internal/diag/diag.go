// Package diag provides shared error formatting for the four pipeline
// stages (lexer, parser, analyzer, evaluator). Each stage wraps its own
// typed error around a *diag.Error so callers can pattern-match on stage
// while still sharing one rendering.
package diag

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-dynl/internal/token"
)

// Kind tags which pipeline stage produced an Error.
type Kind int

const (
	Lex Kind = iota
	Parse
	Analyze
	Evaluate
)

func (k Kind) String() string {
	switch k {
	case Lex:
		return "lex error"
	case Parse:
		return "parse error"
	case Analyze:
		return "analyze error"
	case Evaluate:
		return "evaluate error"
	default:
		return "error"
	}
}

// Error is a single diagnostic with position and, when available, the
// source text it was raised against.
type Error struct {
	Kind    Kind
	Message string
	Pos     token.Position
	Source  string
}

func New(kind Kind, message string, pos token.Position, source string) *Error {
	return &Error{Kind: kind, Message: message, Pos: pos, Source: source}
}

func (e *Error) Error() string {
	return e.Format(false)
}

// Format renders the message with a line-number header and a caret pointing
// at the failing column. If color is true, ANSI codes highlight the caret.
func (e *Error) Format(color bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s at %d:%d\n", e.Kind, e.Pos.Line, e.Pos.Column)

	if line := e.sourceLine(e.Pos.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}

	return sb.String()
}

func (e *Error) sourceLine(line int) string {
	if e.Source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}
