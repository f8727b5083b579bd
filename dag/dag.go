// Package dag implements a minimal directed acyclic graph of values, with the
// search helpers needed by history based point location.
package dag

// Node holds a value and links to its parents and children. Nodes are only
// ever added, never removed.
type Node[T any] struct {
	Element  T
	children []*Node[T]
	parents  []*Node[T]
}

func NewNode[T any](element T) *Node[T] {
	return &Node[T]{Element: element}
}

// AddChild links child below n. Callers must not create cycles.
func (n *Node[T]) AddChild(child *Node[T]) {
	n.children = append(n.children, child)
	child.parents = append(child.parents, n)
}

// AddChildren creates a node for every element below n and returns them.
func (n *Node[T]) AddChildren(elements ...T) []*Node[T] {
	nodes := make([]*Node[T], len(elements))
	for i, e := range elements {
		nodes[i] = NewNode(e)
		n.AddChild(nodes[i])
	}
	return nodes
}

func (n *Node[T]) Children() []*Node[T] { return n.children }
func (n *Node[T]) Parents() []*Node[T] { return n.parents }
func (n *Node[T]) IsLeaf() bool { return len(n.children) == 0 }
func (n *Node[T]) IsRoot() bool { return len(n.parents) == 0 }

// Walk visits every node reachable from n once, depth first. Returning false
// from fn skips the children of that node.
func (n *Node[T]) Walk(fn func(*Node[T]) bool) {
	visited := make(map[*Node[T]]struct{})
	stack := []*Node[T]{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[node]; ok {
			continue
		}
		visited[node] = struct{}{}
		if !fn(node) {
			continue
		}
		// Push in reverse so the first child is visited first.
		for i := len(node.children) - 1; i >= 0; i-- {
			stack = append(stack, node.children[i])
		}
	}
}

// Find searches depth first below n, descending only into nodes for which
// descend holds, and returns the first node that matches.
func (n *Node[T]) Find(descend, match func(*Node[T]) bool) (*Node[T], bool) {
	var found *Node[T]
	n.Walk(func(node *Node[T]) bool {
		if found != nil || !descend(node) {
			return false
		}
		if match(node) {
			found = node
			return false
		}
		return true
	})
	return found, found != nil
}

// Leaves returns every leaf reachable from n.
func (n *Node[T]) Leaves() []*Node[T] {
	var leaves []*Node[T]
	n.Walk(func(node *Node[T]) bool {
		if node.IsLeaf() {
			leaves = append(leaves, node)
		}
		return true
	})
	return leaves
}

// Size counts the nodes reachable from n.
func (n *Node[T]) Size() int {
	size := 0
	n.Walk(func(*Node[T]) bool {
		size++
		return true
	})
	return size
}
