package expr

// node is an expression AST node.
type node interface {
	pos() int
}

type boolLit struct {
	value bool
	at    int
}

type numberLit struct {
	value float64
	at    int
}

type stringLit struct {
	value string
	at    int
}

type nullLit struct {
	at int
}

type identifier struct {
	name string
	at   int
}

type unaryOp struct {
	op      TokenType
	operand node
	at      int
}

type binaryOp struct {
	op    TokenType
	left  node
	right node
	at    int
}

// conditional is the ternary cond ? then : else.
type conditional struct {
	cond node
	then node
	els  node
	at   int
}

func (n *boolLit) pos() int     { return n.at }
func (n *numberLit) pos() int   { return n.at }
func (n *stringLit) pos() int   { return n.at }
func (n *nullLit) pos() int     { return n.at }
func (n *identifier) pos() int  { return n.at }
func (n *unaryOp) pos() int     { return n.at }
func (n *binaryOp) pos() int    { return n.at }
func (n *conditional) pos() int { return n.at }

// walkIdents visits every identifier occurrence in source order.
func walkIdents(n node, fn func(name string)) {
	switch x := n.(type) {
	case *identifier:
		fn(x.name)
	case *unaryOp:
		walkIdents(x.operand, fn)
	case *binaryOp:
		walkIdents(x.left, fn)
		walkIdents(x.right, fn)
	case *conditional:
		walkIdents(x.cond, fn)
		walkIdents(x.then, fn)
		walkIdents(x.els, fn)
	}
}
