package ast

import "iter"

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range children(node) {
		Walk(v, child)
	}
}

// Inspect traverses an AST in depth-first order, calling f for each node.
// If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Preorder returns an iterator over all nodes of the tree rooted at root,
// parents before children.
func Preorder(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		var visit func(Node) bool
		visit = func(n Node) bool {
			if !yield(n) {
				return false
			}
			for _, child := range children(n) {
				if !visit(child) {
					return false
				}
			}
			return true
		}
		visit(root)
	}
}

// children returns the non-nil child nodes of n in source order.
func children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, node := range nodes {
			switch node := node.(type) {
			case nil:
			case *Ident:
				if node != nil {
					out = append(out, node)
				}
			case *Block:
				if node != nil {
					out = append(out, node)
				}
			default:
				out = append(out, node)
			}
		}
	}
	switch n := n.(type) {
	case *Program:
		for _, stmt := range n.Stmts {
			add(stmt)
		}
	case *Let:
		add(n.Name, n.Type, n.Value)
	case *Assign:
		add(n.Name, n.Value)
	case *ExprStmt:
		add(n.X)
	case *Block:
		for _, stmt := range n.Stmts {
			add(stmt)
		}
	case *If:
		for _, branch := range n.Branches {
			add(branch.Cond, branch.Body)
		}
		add(n.Else)
	case *While:
		add(n.Cond, n.Body)
	case *Return:
		add(n.Value)
	case *Func:
		add(n.Name)
		for _, p := range n.Params {
			add(p.Name, p.Type)
		}
		add(n.ReturnType, n.Body)
	case *Prefix:
		add(n.X)
	case *Infix:
		add(n.X, n.Y)
	case *Cast:
		add(n.X, n.Type)
	case *Call:
		add(n.Fun)
		for _, arg := range n.Args {
			add(arg)
		}
	case *Array:
		for _, item := range n.Items {
			add(item)
		}
	}
	return out
}
