package ast

import (
	"bytes"
	"sandpy/internal/token"
	"strconv"
	"strings"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
	Pos() int
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Module is the root of a parsed script.
type Module struct {
	Statements []Statement
}

func (m *Module) TokenLiteral() string {
	if len(m.Statements) > 0 {
		return m.Statements[0].TokenLiteral()
	} else {
		return ""
	}
}

func (m *Module) Pos() int { return 0 }

func (m *Module) String() string {
	var out bytes.Buffer

	for _, s := range m.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}

	return out.String()
}

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Pos() int             { return es.Token.Position }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// AssignStatement covers plain `target = value` and the augmented forms.
// Operator is empty for plain assignment, otherwise the binary operator
// applied before storing (e.g. "+" for "+=").
type AssignStatement struct {
	Token    token.Token // the assignment operator token
	Target   Expression  // *Identifier, *AttributeExpression or *IndexExpression
	Operator string
	Value    Expression
}

func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) Pos() int             { return as.Token.Position }
func (as *AssignStatement) String() string {
	var out bytes.Buffer
	out.WriteString(as.Target.String())
	out.WriteString(" ")
	out.WriteString(as.Operator)
	out.WriteString("= ")
	out.WriteString(as.Value.String())
	return out.String()
}

type ReturnStatement struct {
	Token       token.Token // the 'return' token
	ReturnValue Expression  // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Pos() int             { return rs.Token.Position }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue == nil {
		return "return"
	}
	return "return " + rs.ReturnValue.String()
}

type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) Pos() int             { return bs.Token.Position }
func (bs *BreakStatement) String() string       { return "break" }

type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) Pos() int             { return cs.Token.Position }
func (cs *ContinueStatement) String() string       { return "continue" }

// BlockStatement is a braced statement list. Used as a statement on its own
// it opens a nested scope.
type BlockStatement struct {
	Token      token.Token // the { token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) Pos() int             { return bs.Token.Position }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer

	out.WriteString("{ ")
	for i, s := range bs.Statements {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	out.WriteString(" }")

	return out.String()
}

// IfStatement holds one test. An elif chain is represented as an Alternative
// block containing a single nested IfStatement.
type IfStatement struct {
	Token       token.Token // the 'if' or 'elif' token
	Condition   Expression
	Consequence *BlockStatement
	Alternative *BlockStatement
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Pos() int             { return is.Token.Position }
func (is *IfStatement) String() string {
	var out bytes.Buffer

	out.WriteString("if ")
	out.WriteString(is.Condition.String())
	out.WriteString(" ")
	out.WriteString(is.Consequence.String())

	if is.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(is.Alternative.String())
	}

	return out.String()
}

type WhileStatement struct {
	Token     token.Token // the 'while' token
	Condition Expression
	Body      *BlockStatement
	Otherwise *BlockStatement // runs when the loop ends without break
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) Pos() int             { return ws.Token.Position }
func (ws *WhileStatement) String() string {
	var out bytes.Buffer

	out.WriteString("while ")
	out.WriteString(ws.Condition.String())
	out.WriteString(" ")
	out.WriteString(ws.Body.String())
	if ws.Otherwise != nil {
		out.WriteString(" else ")
		out.WriteString(ws.Otherwise.String())
	}

	return out.String()
}

type ForStatement struct {
	Token     token.Token // the 'for' token
	Target    *Identifier
	Iterable  Expression
	Body      *BlockStatement
	Otherwise *BlockStatement // runs when the loop ends without break
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) Pos() int             { return fs.Token.Position }
func (fs *ForStatement) String() string {
	var out bytes.Buffer

	out.WriteString("for ")
	out.WriteString(fs.Target.String())
	out.WriteString(" in ")
	out.WriteString(fs.Iterable.String())
	out.WriteString(" ")
	out.WriteString(fs.Body.String())
	if fs.Otherwise != nil {
		out.WriteString(" else ")
		out.WriteString(fs.Otherwise.String())
	}

	return out.String()
}

type FunctionDefinition struct {
	Token      token.Token // the 'def' token
	Name       *Identifier
	Parameters []*Identifier
	Body       *BlockStatement
}

func (fd *FunctionDefinition) statementNode()       {}
func (fd *FunctionDefinition) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDefinition) Pos() int             { return fd.Token.Position }
func (fd *FunctionDefinition) String() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range fd.Parameters {
		params = append(params, p.String())
	}

	out.WriteString("def ")
	out.WriteString(fd.Name.String())
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	out.WriteString(fd.Body.String())

	return out.String()
}

type ClassDefinition struct {
	Token token.Token // the 'class' token
	Name  *Identifier
	Bases []Expression
	Body  *BlockStatement
}

func (cd *ClassDefinition) statementNode()       {}
func (cd *ClassDefinition) TokenLiteral() string { return cd.Token.Literal }
func (cd *ClassDefinition) Pos() int             { return cd.Token.Position }
func (cd *ClassDefinition) String() string {
	var out bytes.Buffer

	out.WriteString("class ")
	out.WriteString(cd.Name.String())
	if len(cd.Bases) > 0 {
		bases := []string{}
		for _, b := range cd.Bases {
			bases = append(bases, b.String())
		}
		out.WriteString("(")
		out.WriteString(strings.Join(bases, ", "))
		out.WriteString(")")
	}
	out.WriteString(" ")
	out.WriteString(cd.Body.String())

	return out.String()
}

type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Pos() int             { return i.Token.Position }
func (i *Identifier) String() string       { return i.Value }

type Boolean struct {
	Token token.Token
	Value bool
}

func (b *Boolean) expressionNode()      {}
func (b *Boolean) TokenLiteral() string { return b.Token.Literal }
func (b *Boolean) Pos() int             { return b.Token.Position }
func (b *Boolean) String() string       { return b.Token.Literal }

type NoneLiteral struct {
	Token token.Token
}

func (n *NoneLiteral) expressionNode()      {}
func (n *NoneLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NoneLiteral) Pos() int             { return n.Token.Position }
func (n *NoneLiteral) String() string       { return "None" }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) Pos() int             { return il.Token.Position }
func (il *IntegerLiteral) String() string       { return strconv.FormatInt(il.Value, 10) }

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) Pos() int             { return fl.Token.Position }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) Pos() int             { return sl.Token.Position }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

type PrefixExpression struct {
	Token    token.Token // The prefix token, e.g. ! or not
	Operator string      // canonical operator: "!", "-", "+" or "~"
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) Pos() int             { return pe.Token.Position }
func (pe *PrefixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(pe.Operator)
	out.WriteString(pe.Right.String())
	out.WriteString(")")

	return out.String()
}

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string // canonical operator; word forms are folded to "&&" and "||"
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) Pos() int             { return ie.Token.Position }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

type CallExpression struct {
	Token     token.Token // The '(' token
	Function  Expression  // Identifier, attribute or any callable expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Pos() int             { return ce.Token.Position }
func (ce *CallExpression) String() string {
	var out bytes.Buffer

	args := []string{}
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}

	out.WriteString(ce.Function.String())
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")

	return out.String()
}

type AttributeExpression struct {
	Token token.Token // the '.' token
	Left  Expression
	Name  *Identifier
}

func (ae *AttributeExpression) expressionNode()      {}
func (ae *AttributeExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AttributeExpression) Pos() int             { return ae.Token.Position }
func (ae *AttributeExpression) String() string {
	return ae.Left.String() + "." + ae.Name.String()
}

type IndexExpression struct {
	Token token.Token // The [ token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) Pos() int             { return ie.Token.Position }
func (ie *IndexExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString("[")
	out.WriteString(ie.Index.String())
	out.WriteString("])")

	return out.String()
}

// RangeExpression is range(stop), range(start, stop) or range(start, stop, step).
// Missing parts are nil.
type RangeExpression struct {
	Token token.Token // the 'range' token
	Start Expression
	Stop  Expression
	Step  Expression
}

func (re *RangeExpression) expressionNode()      {}
func (re *RangeExpression) TokenLiteral() string { return re.Token.Literal }
func (re *RangeExpression) Pos() int             { return re.Token.Position }
func (re *RangeExpression) String() string {
	parts := []string{}
	if re.Start != nil {
		parts = append(parts, re.Start.String())
	}
	parts = append(parts, re.Stop.String())
	if re.Step != nil {
		parts = append(parts, re.Step.String())
	}
	return "range(" + strings.Join(parts, ", ") + ")"
}
