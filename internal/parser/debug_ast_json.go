package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sandpy/internal/ast"
)

// WalkAST recursively traverses an AST and serializes it into a machine-centric map structure.
// This output is designed for stability, canonical representation, and tool-chain consumption.
func WalkAST(node ast.Node) interface{} {
	if isNilNode(node) {
		return nil
	}

	switch n := node.(type) {
	case *ast.Module:
		return map[string]interface{}{
			"type":       "Module",
			"statements": walkStatements(n.Statements),
		}

	case *ast.ExpressionStatement:
		return map[string]interface{}{
			"type":       "ExpressionStatement",
			"position":   n.Pos(),
			"expression": WalkAST(n.Expression),
		}

	case *ast.AssignStatement:
		return map[string]interface{}{
			"type":     "AssignStatement",
			"position": n.Pos(),
			"token":    n.TokenLiteral(),
			"operator": n.Operator,
			"target":   WalkAST(n.Target),
			"value":    WalkAST(n.Value),
		}

	case *ast.ReturnStatement:
		return map[string]interface{}{
			"type":        "ReturnStatement",
			"position":    n.Pos(),
			"returnValue": WalkAST(n.ReturnValue),
		}

	case *ast.BreakStatement:
		return map[string]interface{}{
			"type":     "BreakStatement",
			"position": n.Pos(),
		}

	case *ast.ContinueStatement:
		return map[string]interface{}{
			"type":     "ContinueStatement",
			"position": n.Pos(),
		}

	case *ast.BlockStatement:
		return map[string]interface{}{
			"type":       "BlockStatement",
			"position":   n.Pos(),
			"statements": walkStatements(n.Statements),
		}

	case *ast.IfStatement:
		return map[string]interface{}{
			"type":        "IfStatement",
			"position":    n.Pos(),
			"condition":   WalkAST(n.Condition),
			"consequence": WalkAST(n.Consequence),
			"alternative": WalkAST(n.Alternative),
		}

	case *ast.WhileStatement:
		return map[string]interface{}{
			"type":      "WhileStatement",
			"position":  n.Pos(),
			"condition": WalkAST(n.Condition),
			"body":      WalkAST(n.Body),
			"otherwise": WalkAST(n.Otherwise),
		}

	case *ast.ForStatement:
		return map[string]interface{}{
			"type":      "ForStatement",
			"position":  n.Pos(),
			"target":    WalkAST(n.Target),
			"iterable":  WalkAST(n.Iterable),
			"body":      WalkAST(n.Body),
			"otherwise": WalkAST(n.Otherwise),
		}

	case *ast.FunctionDefinition:
		params := make([]interface{}, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = WalkAST(p)
		}
		return map[string]interface{}{
			"type":       "FunctionDefinition",
			"position":   n.Pos(),
			"name":       n.Name.Value,
			"parameters": params,
			"body":       WalkAST(n.Body),
		}

	case *ast.ClassDefinition:
		return map[string]interface{}{
			"type":     "ClassDefinition",
			"position": n.Pos(),
			"name":     n.Name.Value,
			"bases":    walkExpressions(n.Bases),
			"body":     WalkAST(n.Body),
		}

	case *ast.Identifier:
		return map[string]interface{}{
			"type":  "Identifier",
			"value": n.Value,
		}

	case *ast.IntegerLiteral:
		return map[string]interface{}{
			"type":  "IntegerLiteral",
			"token": n.TokenLiteral(),
			"value": n.Value,
		}

	case *ast.FloatLiteral:
		return map[string]interface{}{
			"type":  "FloatLiteral",
			"token": n.TokenLiteral(),
			"value": n.Value,
		}

	case *ast.StringLiteral:
		return map[string]interface{}{
			"type":  "StringLiteral",
			"value": n.Value,
		}

	case *ast.Boolean:
		return map[string]interface{}{
			"type":  "Boolean",
			"value": n.Value,
		}

	case *ast.NoneLiteral:
		return map[string]interface{}{
			"type": "NoneLiteral",
		}

	case *ast.PrefixExpression:
		return map[string]interface{}{
			"type":     "PrefixExpression",
			"position": n.Pos(),
			"operator": n.Operator,
			"right":    WalkAST(n.Right),
		}

	case *ast.InfixExpression:
		return map[string]interface{}{
			"type":     "InfixExpression",
			"position": n.Pos(),
			"operator": n.Operator,
			"left":     WalkAST(n.Left),
			"right":    WalkAST(n.Right),
		}

	case *ast.CallExpression:
		return map[string]interface{}{
			"type":      "CallExpression",
			"position":  n.Pos(),
			"function":  WalkAST(n.Function),
			"arguments": walkExpressions(n.Arguments),
		}

	case *ast.AttributeExpression:
		return map[string]interface{}{
			"type":     "AttributeExpression",
			"position": n.Pos(),
			"left":     WalkAST(n.Left),
			"name":     n.Name.Value,
		}

	case *ast.IndexExpression:
		return map[string]interface{}{
			"type":     "IndexExpression",
			"position": n.Pos(),
			"left":     WalkAST(n.Left),
			"index":    WalkAST(n.Index),
		}

	case *ast.RangeExpression:
		return map[string]interface{}{
			"type":     "RangeExpression",
			"position": n.Pos(),
			"start":    WalkAST(n.Start),
			"stop":     WalkAST(n.Stop),
			"step":     WalkAST(n.Step),
		}

	default:
		return map[string]interface{}{
			"type":  fmt.Sprintf("%T", n),
			"token": safeTokenLiteral(n),
		}
	}
}

func walkStatements(stmts []ast.Statement) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = WalkAST(s)
	}
	return result
}

func walkExpressions(exprs []ast.Expression) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = WalkAST(e)
	}
	return result
}

func isNilNode(node ast.Node) bool {
	return node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil())
}

func safeTokenLiteral(node ast.Node) string {
	if isNilNode(node) {
		return ""
	}
	return node.TokenLiteral()
}

func RenderASTAsJSON(node ast.Node) (string, error) {
	astMap := WalkAST(node)
	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(astMap); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %v", err)
	}
	return buf.String(), nil
}
