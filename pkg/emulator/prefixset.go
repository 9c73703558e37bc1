package emulator

// PrefixSet stores sequences in a trie, so sequences sharing a prefix share
// storage. Execution paths through the same code tend to diverge late, which
// makes the trie a compact summary of where a batch of runs went.
type PrefixSet[E comparable] struct {
	root prefixNode[E]
	size int
}

type prefixNode[E comparable] struct {
	children map[E]*prefixNode[E]
	order    []E
	terminal bool
}

// NewPrefixSet returns an empty set.
func NewPrefixSet[E comparable]() *PrefixSet[E] {
	return &PrefixSet[E]{}
}

// Insert adds the sequence and reports whether it was not already present.
func (s *PrefixSet[E]) Insert(seq []E) bool {
	node := &s.root
	for _, e := range seq {
		child, ok := node.children[e]
		if !ok {
			if node.children == nil {
				node.children = make(map[E]*prefixNode[E])
			}
			child = &prefixNode[E]{}
			node.children[e] = child
			node.order = append(node.order, e)
		}
		node = child
	}
	if node.terminal {
		return false
	}
	node.terminal = true
	s.size++
	return true
}

// Contains reports whether the exact sequence was inserted.
func (s *PrefixSet[E]) Contains(seq []E) bool {
	node := s.lookup(seq)
	return node != nil && node.terminal
}

// ContainsPrefix reports whether any inserted sequence starts with prefix.
func (s *PrefixSet[E]) ContainsPrefix(prefix []E) bool {
	return s.lookup(prefix) != nil
}

// Len reports the number of distinct sequences inserted.
func (s *PrefixSet[E]) Len() int {
	return s.size
}

// Sequences enumerates the inserted sequences. Parents precede children and
// siblings appear in first-insertion order, so enumeration is deterministic
// for a given insertion history.
func (s *PrefixSet[E]) Sequences() [][]E {
	var out [][]E
	var walk func(node *prefixNode[E], path []E)
	walk = func(node *prefixNode[E], path []E) {
		if node.terminal {
			out = append(out, append([]E(nil), path...))
		}
		for _, e := range node.order {
			walk(node.children[e], append(path, e))
		}
	}
	walk(&s.root, nil)
	return out
}

func (s *PrefixSet[E]) lookup(seq []E) *prefixNode[E] {
	node := &s.root
	for _, e := range seq {
		child, ok := node.children[e]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}
