package orderbook

// color of an rbNode. The sentinel nil node is always black.
type color bool

const (
	red   color = true
	black color = false
)

type rbNode struct {
	key    uint32
	level  *PriceLevel
	color  color
	left   *rbNode
	right  *rbNode
	parent *rbNode
}

// RBTree is an ordered map from price to PriceLevel, ascending by
// key. OrderBook keeps one per side; bids read it via BestMax/walkDesc,
// asks via BestMin/walkAsc. A price key exists in the tree iff its
// level is non-empty — OrderBook erases empty levels immediately.
type RBTree struct {
	root *rbNode
	nilN *rbNode
	size int
}

// NewRBTree returns an empty tree with its sentinel initialised black.
func NewRBTree() *RBTree {
	sentinel := &rbNode{color: black}
	sentinel.left, sentinel.right, sentinel.parent = sentinel, sentinel, sentinel
	return &RBTree{root: sentinel, nilN: sentinel}
}

// Len reports the number of distinct price levels.
func (t *RBTree) Len() int { return t.size }

// ---- public API ----

// GetOrCreate returns the level at price, creating an empty one and
// inserting it into the tree if absent.
func (t *RBTree) GetOrCreate(price uint32) *PriceLevel {
	n := t.find(price)
	if n != t.nilN {
		return n.level
	}
	lvl := &PriceLevel{Price: price}
	t.insert(price, lvl)
	return lvl
}

// Find returns the level at price, or nil if the price has no level.
func (t *RBTree) Find(price uint32) *PriceLevel {
	n := t.find(price)
	if n == t.nilN {
		return nil
	}
	return n.level
}

// Erase removes the price key from the tree. Called by OrderBook once
// a level's FIFO becomes empty (spec §4.E invariant: a price key
// exists iff its FIFO is non-empty).
func (t *RBTree) Erase(price uint32) {
	n := t.find(price)
	if n == t.nilN {
		return
	}
	t.delete(n)
}

// BestMin returns the level with the lowest price, or nil if empty.
func (t *RBTree) BestMin() *PriceLevel {
	n := t.min(t.root)
	if n == t.nilN {
		return nil
	}
	return n.level
}

// BestMax returns the level with the highest price, or nil if empty.
func (t *RBTree) BestMax() *PriceLevel {
	n := t.max(t.root)
	if n == t.nilN {
		return nil
	}
	return n.level
}

// ---- walkers (priority order) ----

func (t *RBTree) walkAsc(fn func(*PriceLevel)) {
	for n := t.min(t.root); n != t.nilN; n = t.next(n) {
		fn(n.level)
	}
}

func (t *RBTree) walkDesc(fn func(*PriceLevel)) {
	for n := t.max(t.root); n != t.nilN; n = t.prev(n) {
		fn(n.level)
	}
}

// ---- lookup helpers ----

func (t *RBTree) find(price uint32) *rbNode {
	n := t.root
	for n != t.nilN {
		if price < n.key {
			n = n.left
		} else if price > n.key {
			n = n.right
		} else {
			return n
		}
	}
	return t.nilN
}

func (t *RBTree) min(n *rbNode) *rbNode {
	for n != t.nilN && n.left != t.nilN {
		n = n.left
	}
	return n
}

func (t *RBTree) max(n *rbNode) *rbNode {
	for n != t.nilN && n.right != t.nilN {
		n = n.right
	}
	return n
}

func (t *RBTree) next(n *rbNode) *rbNode {
	if n.right != t.nilN {
		return t.min(n.right)
	}
	p := n.parent
	for p != t.nilN && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

func (t *RBTree) prev(n *rbNode) *rbNode {
	if n.left != t.nilN {
		return t.max(n.left)
	}
	p := n.parent
	for p != t.nilN && n == p.left {
		n = p
		p = p.parent
	}
	return p
}

// ---- rotations ----

func (t *RBTree) rotateLeft(x *rbNode) {
	y := x.right
	x.right = y.left
	if y.left != t.nilN {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == t.nilN {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *RBTree) rotateRight(x *rbNode) {
	y := x.left
	x.left = y.right
	if y.right != t.nilN {
		y.right.parent = x
	}
	y.parent = x.parent
	if x.parent == t.nilN {
		t.root = y
	} else if x == x.parent.right {
		x.parent.right = y
	} else {
		x.parent.left = y
	}
	y.right = x
	x.parent = y
}

// ---- insert (CLRS RB-INSERT + RB-INSERT-FIXUP) ----

func (t *RBTree) insert(price uint32, lvl *PriceLevel) {
	z := &rbNode{key: price, level: lvl, color: red, left: t.nilN, right: t.nilN, parent: t.nilN}

	var y *rbNode = t.nilN
	x := t.root
	for x != t.nilN {
		y = x
		if z.key < x.key {
			x = x.left
		} else {
			x = x.right
		}
	}
	z.parent = y
	if y == t.nilN {
		t.root = z
	} else if z.key < y.key {
		y.left = z
	} else {
		y.right = z
	}
	t.size++
	t.insertFixup(z)
}

func (t *RBTree) insertFixup(z *rbNode) {
	for z.parent.color == red {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					t.rotateLeft(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.rotateRight(z.parent.parent)
			}
		} else {
			y := z.parent.parent.left
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rotateRight(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.rotateLeft(z.parent.parent)
			}
		}
	}
	t.root.color = black
}

// ---- delete (CLRS RB-DELETE + RB-DELETE-FIXUP) ----

func (t *RBTree) transplant(u, v *rbNode) {
	if u.parent == t.nilN {
		t.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	v.parent = u.parent
}

func (t *RBTree) delete(z *rbNode) {
	y := z
	yOriginalColor := y.color
	var x *rbNode

	if z.left == t.nilN {
		x = z.right
		t.transplant(z, z.right)
	} else if z.right == t.nilN {
		x = z.left
		t.transplant(z, z.left)
	} else {
		y = t.min(z.right)
		yOriginalColor = y.color
		x = y.right
		if y.parent == z {
			x.parent = y
		} else {
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}
	t.size--
	if yOriginalColor == black {
		t.deleteFixup(x)
	}
}

func (t *RBTree) deleteFixup(x *rbNode) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rotateLeft(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					t.rotateRight(w)
					w = x.parent.right
				}
				w.color = x.parent.color
				x.parent.color = black
				w.right.color = black
				t.rotateLeft(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rotateRight(x.parent)
				w = x.parent.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					t.rotateLeft(w)
					w = x.parent.left
				}
				w.color = x.parent.color
				x.parent.color = black
				w.left.color = black
				t.rotateRight(x.parent)
				x = t.root
			}
		}
	}
	x.color = black
}
