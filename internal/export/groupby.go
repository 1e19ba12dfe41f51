package export

import (
	"maps"
	"slices"
)

// Node is one level of a grouping. Leaves hold items, inner nodes children.
type Node[T any] struct {
	Children map[string]*Node[T]
	Items    []T
}

// GroupBy groups items by the key of each extractor in turn, one tree level
// per extractor. Items are kept in their input order within a leaf.
func GroupBy[T any](items []T, keys ...func(item T) string) *Node[T] {
	if len(keys) == 0 {
		return &Node[T]{Items: items}
	}

	buckets := make(map[string][]T)
	for _, item := range items {
		k := keys[0](item)
		buckets[k] = append(buckets[k], item)
	}

	node := &Node[T]{Children: make(map[string]*Node[T], len(buckets))}
	for k, bucket := range buckets {
		node.Children[k] = GroupBy(bucket, keys[1:]...)
	}
	return node
}

// Walk calls fn on every leaf with the keys leading to it, keys sorted at
// every level.
func (n *Node[T]) Walk(fn func(path []string, items []T)) {
	n.walk(nil, fn)
}

func (n *Node[T]) walk(path []string, fn func(path []string, items []T)) {
	if n.Children == nil {
		fn(slices.Clone(path), n.Items)
		return
	}
	for _, k := range slices.Sorted(maps.Keys(n.Children)) {
		n.Children[k].walk(append(path, k), fn)
	}
}
