package main

import (
	"strings"

	"github.com/expr-lang/expr/ast"
)

// FindCellRefsVisitor collects every identifier of a parsed formula in visiting order,
// except the generated ones starting with skipPrefix
type FindCellRefsVisitor struct {
	cellRefs   []string
	skipPrefix string
}

func (v *FindCellRefsVisitor) Visit(node *ast.Node) {
	identifierNode, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}

	if v.skipPrefix != "" && strings.HasPrefix(identifierNode.Value, v.skipPrefix) {
		return
	}

	v.cellRefs = append(v.cellRefs, identifierNode.Value)
}
