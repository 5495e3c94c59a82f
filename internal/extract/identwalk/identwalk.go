// Package identwalk walks a parsed JavaScript AST (github.com/dop251/
// goja/ast) looking for string and template literals, recording the
// nearest enclosing named context each one sits in: a variable
// declarator's name, an object property's key, an assignment target,
// or the property name of a member-expression call such as
// client.setApiKey("..."). The context is threaded down through the
// walk and restored on the way back up, since goja/ast has no
// built-in visitor interface to hook into.
package identwalk

import "github.com/dop251/goja/ast"

// Literal is a string or (no-substitution) template literal found
// during the walk, with the named context it was found under.
type Literal struct {
	Start      int
	End        int
	Value      string
	Identifier string
}

// Walk returns every string/template literal in prog, in source order.
func Walk(prog *ast.Program) []Literal {
	w := &walker{}
	for _, stmt := range prog.Body {
		w.statement(stmt, "")
	}
	return w.literals
}

type walker struct {
	literals []Literal
}

func (w *walker) statement(s ast.Statement, ctx string) {
	if s == nil {
		return
	}
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		w.expression(n.Expression, ctx)
	case *ast.VariableStatement:
		for _, b := range n.List {
			name := identifierName(b.Target)
			w.expression(b.Initializer, name)
		}
	case *ast.LexicalDeclaration:
		for _, b := range n.List {
			name := identifierName(b.Target)
			w.expression(b.Initializer, name)
		}
	case *ast.BlockStatement:
		for _, st := range n.List {
			w.statement(st, ctx)
		}
	case *ast.IfStatement:
		w.expression(n.Test, ctx)
		w.statement(n.Consequent, ctx)
		w.statement(n.Alternate, ctx)
	case *ast.ReturnStatement:
		w.expression(n.Argument, ctx)
	case *ast.ForStatement:
		w.statement(n.Body, ctx)
	case *ast.ForInStatement:
		w.statement(n.Body, ctx)
	case *ast.ForOfStatement:
		w.statement(n.Body, ctx)
	case *ast.WhileStatement:
		w.expression(n.Test, ctx)
		w.statement(n.Body, ctx)
	case *ast.DoWhileStatement:
		w.expression(n.Test, ctx)
		w.statement(n.Body, ctx)
	case *ast.TryStatement:
		if n.Body != nil {
			w.statement(n.Body, ctx)
		}
		if n.Catch != nil && n.Catch.Body != nil {
			w.statement(n.Catch.Body, ctx)
		}
		if n.Finally != nil {
			w.statement(n.Finally, ctx)
		}
	case *ast.FunctionDeclaration:
		if n.Function != nil && n.Function.Body != nil {
			w.statement(n.Function.Body, ctx)
		}
	case *ast.LabelledStatement:
		w.statement(n.Statement, ctx)
	case *ast.SwitchStatement:
		w.expression(n.Discriminant, ctx)
		for _, c := range n.Body {
			for _, st := range c.Consequent {
				w.statement(st, ctx)
			}
		}
	case *ast.ThrowStatement:
		w.expression(n.Argument, ctx)
	}
}

func (w *walker) expression(e ast.Expression, ctx string) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.StringLiteral:
		w.literals = append(w.literals, Literal{
			Start:      int(n.Idx) - 1,
			End:        int(n.Idx) - 1 + len(n.Literal),
			Value:      string(n.Value),
			Identifier: ctx,
		})
	case *ast.TemplateLiteral:
		if len(n.Expressions) == 0 && len(n.Elements) == 1 {
			el := n.Elements[0]
			w.literals = append(w.literals, Literal{
				Start:      int(n.OpenQuote) - 1,
				End:        int(n.CloseQuote),
				Value:      string(el.Parsed),
				Identifier: ctx,
			})
			return
		}
		for _, sub := range n.Expressions {
			w.expression(sub, ctx)
		}
	case *ast.AssignExpression:
		name := identifierName(n.Left)
		w.expression(n.Right, name)
	case *ast.CallExpression:
		callCtx := ctx
		if dot, ok := n.Callee.(*ast.DotExpression); ok {
			// A call argument whose callee is a member expression
			// inherits the member's property name as context, e.g.
			// the "setApiKey" in client.setApiKey("...").
			callCtx = string(dot.Identifier.Name)
		}
		w.expression(n.Callee, ctx)
		for _, arg := range n.ArgumentList {
			w.expression(arg, callCtx)
		}
	case *ast.NewExpression:
		w.expression(n.Callee, ctx)
		for _, arg := range n.ArgumentList {
			w.expression(arg, ctx)
		}
	case *ast.ObjectLiteral:
		for _, p := range n.Value {
			switch prop := p.(type) {
			case *ast.PropertyKeyed:
				name := propertyKeyName(prop.Key)
				w.expression(prop.Value, name)
			case *ast.PropertyShort:
				w.expression(prop.Initializer, string(prop.Name.Name))
			}
		}
	case *ast.ArrayLiteral:
		for _, el := range n.Value {
			w.expression(el, ctx)
		}
	case *ast.BinaryExpression:
		w.expression(n.Left, ctx)
		w.expression(n.Right, ctx)
	case *ast.ConditionalExpression:
		w.expression(n.Test, ctx)
		w.expression(n.Consequent, ctx)
		w.expression(n.Alternate, ctx)
	case *ast.UnaryExpression:
		w.expression(n.Operand, ctx)
	case *ast.SequenceExpression:
		for _, sub := range n.Sequence {
			w.expression(sub, ctx)
		}
	case *ast.FunctionLiteral:
		if n.Body != nil {
			w.statement(n.Body, ctx)
		}
	case *ast.DotExpression:
		w.expression(n.Left, ctx)
	case *ast.BracketExpression:
		w.expression(n.Left, ctx)
		w.expression(n.Member, ctx)
	case *ast.SpreadElement:
		w.expression(n.Expression, ctx)
	}
}

func identifierName(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.Identifier:
		return string(n.Name)
	case *ast.DotExpression:
		return string(n.Identifier.Name)
	default:
		return ""
	}
}

func propertyKeyName(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.StringLiteral:
		return string(n.Value)
	case *ast.Identifier:
		return string(n.Name)
	default:
		return ""
	}
}
