package lrtree

// wnode carries the walker state of one node.
// z is the preliminary position, m the modifier, c and s the change and shift
// accumulated by moveSubtree, t the thread, a the ancestor and A the default
// ancestor of the node's children.
type wnode struct {
	node     *Node
	parent   *wnode
	children []*wnode
	i        int

	A *wnode
	a *wnode
	t *wnode

	z float64
	m float64
	c float64
	s float64
}

// buchheim sets X of every node to its breadth coordinate in units of
// NODE_SPACING_X, the root at 0.
func buchheim(root *Node) {
	t := wrap(root, 0)
	// The virtual parent lets firstWalk treat the root like any other child.
	t.parent = &wnode{children: []*wnode{t}}
	t.parent.a = t.parent

	eachAfter(t, firstWalk)
	t.parent.m = -t.z
	eachBefore(t, secondWalk)
}

func wrap(n *Node, i int) *wnode {
	w := &wnode{node: n, i: i}
	w.a = w
	for j, c := range n.Children {
		cw := wrap(c, j)
		cw.parent = w
		w.children = append(w.children, cw)
	}
	return w
}

func eachAfter(v *wnode, fn func(*wnode)) {
	for _, c := range v.children {
		eachAfter(c, fn)
	}
	fn(v)
}

func eachBefore(v *wnode, fn func(*wnode)) {
	fn(v)
	for _, c := range v.children {
		eachBefore(c, fn)
	}
}

func separation(a, b *wnode) float64 {
	return Separation(a.node, b.node)
}

func firstWalk(v *wnode) {
	siblings := v.parent.children
	var w *wnode
	if v.i > 0 {
		w = siblings[v.i-1]
	}
	if len(v.children) > 0 {
		executeShifts(v)
		midpoint := (v.children[0].z + v.children[len(v.children)-1].z) / 2
		if w != nil {
			v.z = w.z + separation(v, w)
			v.m = v.z - midpoint
		} else {
			v.z = midpoint
		}
	} else if w != nil {
		v.z = w.z + separation(v, w)
	}
	ancestor := v.parent.A
	if ancestor == nil {
		ancestor = siblings[0]
	}
	v.parent.A = apportion(v, w, ancestor)
}

func secondWalk(v *wnode) {
	v.node.X = v.z + v.parent.m
	v.m += v.parent.m
}

// apportion pushes the subtree of v right of everything left of it, walking the
// right contour of the left forest and the left contour of v together.
func apportion(v, w, ancestor *wnode) *wnode {
	if w == nil {
		return ancestor
	}
	vip, vop := v, v
	vim := w
	vom := v.parent.children[0]
	sip, sop := vip.m, vop.m
	sim, som := vim.m, vom.m

	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.a = v
		shift := vim.z + sim - vip.z - sip + separation(vim, vip)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.m
		sip += vip.m
		som += vom.m
		sop += vop.m
	}
	if vim != nil && nextRight(vop) == nil {
		vop.t = vim
		vop.m += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.t = vip
		vom.m += sip - som
		ancestor = v
	}
	return ancestor
}

func nextLeft(v *wnode) *wnode {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.t
}

func nextRight(v *wnode) *wnode {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.t
}

func moveSubtree(wm, wp *wnode, shift float64) {
	change := shift / float64(wp.i-wm.i)
	wp.c -= change
	wp.s += shift
	wm.c += change
	wp.z += shift
	wp.m += shift
}

func executeShifts(v *wnode) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.z += shift
		w.m += shift
		change += w.c
		shift += w.s + change
	}
}

func nextAncestor(vim, v, ancestor *wnode) *wnode {
	if vim.a.parent == v.parent {
		return vim.a
	}
	return ancestor
}
