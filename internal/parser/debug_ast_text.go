package parser

import (
	"fmt"
	"sandpy/internal/ast"
	"strconv"
	"strings"
)

// RenderASTAsText produces a human-centric, indented representation of the AST.
// Every infix and prefix expression is parenthesized, which makes it useful for
// checking precedence and binding.
func RenderASTAsText(node ast.Node, indent int) string {
	if isNilNode(node) {
		return "nil"
	}

	sp := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *ast.Module:
		var sb strings.Builder
		for i, s := range n.Statements {
			if i > 0 {
				sb.WriteString("\n")
			}
			// Root level statements start at indent 0
			sb.WriteString(RenderASTAsText(s, 0))
		}
		return sb.String()

	case *ast.ExpressionStatement:
		return sp + RenderASTAsText(n.Expression, 0)

	case *ast.AssignStatement:
		return fmt.Sprintf("%s%s %s= %s", sp, RenderASTAsText(n.Target, 0), n.Operator, RenderASTAsText(n.Value, 0))

	case *ast.ReturnStatement:
		if n.ReturnValue == nil {
			return sp + "return"
		}
		return fmt.Sprintf("%sreturn %s", sp, RenderASTAsText(n.ReturnValue, 0))

	case *ast.BreakStatement:
		return sp + "break"

	case *ast.ContinueStatement:
		return sp + "continue"

	case *ast.BlockStatement:
		return sp + renderBlock(n, indent)

	case *ast.IfStatement:
		res := fmt.Sprintf("%sif %s %s", sp, RenderASTAsText(n.Condition, 0), renderBlock(n.Consequence, indent))
		if n.Alternative != nil {
			res += " else " + renderBlock(n.Alternative, indent)
		}
		return res

	case *ast.WhileStatement:
		res := fmt.Sprintf("%swhile %s %s", sp, RenderASTAsText(n.Condition, 0), renderBlock(n.Body, indent))
		if n.Otherwise != nil {
			res += " else " + renderBlock(n.Otherwise, indent)
		}
		return res

	case *ast.ForStatement:
		res := fmt.Sprintf("%sfor %s in %s %s", sp, n.Target.Value, RenderASTAsText(n.Iterable, 0), renderBlock(n.Body, indent))
		if n.Otherwise != nil {
			res += " else " + renderBlock(n.Otherwise, indent)
		}
		return res

	case *ast.FunctionDefinition:
		params := []string{}
		for _, p := range n.Parameters {
			params = append(params, p.Value)
		}
		return fmt.Sprintf("%sdef %s(%s) %s", sp, n.Name.Value, strings.Join(params, ", "), renderBlock(n.Body, indent))

	case *ast.ClassDefinition:
		bases := ""
		if len(n.Bases) > 0 {
			bases = "(" + renderList(n.Bases) + ")"
		}
		return fmt.Sprintf("%sclass %s%s %s", sp, n.Name.Value, bases, renderBlock(n.Body, indent))

	case *ast.CallExpression:
		return fmt.Sprintf("%s(%s)", RenderASTAsText(n.Function, 0), renderList(n.Arguments))
	case *ast.InfixExpression:
		return fmt.Sprintf("(%s %s %s)", RenderASTAsText(n.Left, 0), n.Operator, RenderASTAsText(n.Right, 0))
	case *ast.PrefixExpression:
		return fmt.Sprintf("(%s%s)", n.Operator, RenderASTAsText(n.Right, 0))
	case *ast.IndexExpression:
		return fmt.Sprintf("%s[%s]", RenderASTAsText(n.Left, 0), RenderASTAsText(n.Index, 0))
	case *ast.AttributeExpression:
		return RenderASTAsText(n.Left, 0) + "." + n.Name.Value
	case *ast.RangeExpression:
		return n.String()
	case *ast.Identifier:
		return n.Value
	case *ast.IntegerLiteral:
		return strconv.FormatInt(n.Value, 10)
	case *ast.FloatLiteral:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	case *ast.StringLiteral:
		return fmt.Sprintf("%q", n.Value)
	case *ast.Boolean:
		if n.Value {
			return "True"
		}
		return "False"
	case *ast.NoneLiteral:
		return "None"
	default:
		return fmt.Sprintf("<%T>", n)
	}
}

func renderBlock(block *ast.BlockStatement, indent int) string {
	if block == nil {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range block.Statements {
		// Statements inside the block are indented +1
		sb.WriteString(RenderASTAsText(s, indent+1))
		sb.WriteString("\n")
	}
	// The closing brace aligns with the parent's indent
	sb.WriteString(strings.Repeat("  ", indent) + "}")
	return sb.String()
}

func renderList(exprs []ast.Expression) string {
	parts := []string{}
	for _, e := range exprs {
		parts = append(parts, RenderASTAsText(e, 0))
	}
	return strings.Join(parts, ", ")
}
