package markup

// Walk visits n and its descendants in document order. If fn returns
// false the children of the visited node are skipped.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Find returns the first node in document order for which match returns
// true, or nil.
func Find(n *Node, match func(*Node) bool) *Node {
	var found *Node
	Walk(n, func(c *Node) bool {
		if found != nil {
			return false
		}
		if match(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindElement returns the first element with the given tag.
func FindElement(n *Node, tag string) *Node {
	return Find(n, func(c *Node) bool { return c.IsElement(tag) })
}
