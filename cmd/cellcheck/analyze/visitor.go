package analyze

import (
	"fmt"
	"go/ast"
	"go/token"
)

// guardInfo tracks one borrow guard variable through a function body.
type guardInfo struct {
	name    string
	method  string // acquisition method name
	pos     token.Pos
	release releaseState
	escape  token.Pos // position of the escaping use, or NoPos
}

type releaseState int

const (
	neverReleased releaseState = iota
	releasedInline
	releasedDeferred
)

// checkFunc scans one function body for guard acquisitions and their
// fates, appending diagnostics to res.
func checkFunc(fset *token.FileSet, fn *ast.FuncDecl, opts Options, res *Result) {
	var guards []*guardInfo
	byName := make(map[string]*guardInfo)

	// Pass 1: acquisitions (including discarded ones, reported here).
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		switch stmt := n.(type) {
		case *ast.ExprStmt:
			if method, ok := acquireCall(stmt.X); ok {
				res.Stats.GuardsSeen++
				res.Diagnostics = append(res.Diagnostics, newDiagnostic(fset, stmt.Pos(),
					fmt.Sprintf("result of %s() discarded; the slot stays borrowed forever", method),
					"assign the guard and release it with defer"))
			}
		case *ast.AssignStmt:
			for i, rhs := range stmt.Rhs {
				method, ok := acquireCall(rhs)
				if !ok {
					continue
				}
				res.Stats.GuardsSeen++

				// For single-call assignments the guard is always
				// lhs[0]: `g := c.Borrow()` and `g, err := c.TryBorrow()`.
				lhs := stmt.Lhs[0]
				if len(stmt.Rhs) == len(stmt.Lhs) {
					lhs = stmt.Lhs[i]
				}
				ident, isIdent := lhs.(*ast.Ident)
				if !isIdent || ident.Name == "_" {
					res.Diagnostics = append(res.Diagnostics, newDiagnostic(fset, stmt.Pos(),
						fmt.Sprintf("result of %s() discarded; the slot stays borrowed forever", method),
						"assign the guard and release it with defer"))
					continue
				}

				g := &guardInfo{name: ident.Name, method: method, pos: stmt.Pos()}
				guards = append(guards, g)
				byName[g.name] = g
			}
		}
		return true
	})

	if len(guards) == 0 {
		return
	}

	// Pass 2: releases and escapes.
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		switch stmt := n.(type) {
		case *ast.DeferStmt:
			if name, ok := releaseCall(stmt.Call); ok {
				if g := byName[name]; g != nil {
					g.release = releasedDeferred
				}
			}
		case *ast.ExprStmt:
			if call, ok := stmt.X.(*ast.CallExpr); ok {
				if name, ok := releaseCall(call); ok {
					if g := byName[name]; g != nil && g.release == neverReleased {
						g.release = releasedInline
					}
				}
			}
		case *ast.ReturnStmt:
			for _, result := range stmt.Results {
				markEscapes(result, byName, stmt.Pos())
			}
		case *ast.AssignStmt:
			// Storing a guard outside function locals: x.f = g, m[k] = g.
			for i, lhs := range stmt.Lhs {
				switch lhs.(type) {
				case *ast.SelectorExpr, *ast.IndexExpr:
					if i < len(stmt.Rhs) {
						markEscapes(stmt.Rhs[i], byName, stmt.Pos())
					}
				}
			}
		}
		return true
	})

	for _, g := range guards {
		switch {
		case opts.CheckEscapes && g.escape != token.NoPos:
			res.Diagnostics = append(res.Diagnostics, newDiagnostic(fset, g.escape,
				fmt.Sprintf("borrow guard %q escapes the function", g.name),
				"release the guard before returning, or hand out a copy of the value instead"))
		case g.release == neverReleased:
			res.Diagnostics = append(res.Diagnostics, newDiagnostic(fset, g.pos,
				fmt.Sprintf("borrow guard %q is never released", g.name),
				fmt.Sprintf("add `defer %s.Release()` after %s()", g.name, g.method)))
		case opts.RequireDefer && g.release == releasedInline:
			res.Diagnostics = append(res.Diagnostics, newDiagnostic(fset, g.pos,
				fmt.Sprintf("borrow guard %q is released without defer", g.name),
				"a panic between acquire and release leaks the borrow; prefer defer"))
		}
	}
}

// acquireCall reports whether expr is a call to a borrow acquisition
// method, returning the method name.
func acquireCall(expr ast.Expr) (string, bool) {
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return "", false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || !acquireMethods[sel.Sel.Name] {
		return "", false
	}
	return sel.Sel.Name, true
}

// releaseCall reports whether call is `<ident>.Release()`, returning the
// receiver name.
func releaseCall(call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Release" {
		return "", false
	}
	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return "", false
	}
	return ident.Name, true
}

// markEscapes records an escape for every tracked guard identifier that
// appears in expr.
func markEscapes(expr ast.Expr, byName map[string]*guardInfo, pos token.Pos) {
	ast.Inspect(expr, func(n ast.Node) bool {
		if ident, ok := n.(*ast.Ident); ok {
			if g := byName[ident.Name]; g != nil && g.escape == token.NoPos {
				g.escape = pos
			}
		}
		return true
	})
}
