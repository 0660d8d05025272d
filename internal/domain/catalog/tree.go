package catalog

import (
	"errors"
	"sort"

	"github.com/google/uuid"
)

var (
	// ErrCategoryNotFound indicates the id is absent from the given category set.
	ErrCategoryNotFound = errors.New("catalog: category not found")
	// ErrCycleDetected indicates the parent chain loops back on itself.
	ErrCycleDetected = errors.New("catalog: category cycle detected")
)

// CategoryNode is a category with its resolved direct children.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}

// BuildTree groups categories by parent id into a forest. Roots are the
// categories with a nil parent; every node's Children holds only direct
// children, ordered by SortOrder then Name. Categories pointing at a parent
// that is not in the input are dropped rather than promoted to roots.
func BuildTree(categories []Category) []*CategoryNode {
	byID := make(map[uuid.UUID]*CategoryNode, len(categories))
	for _, c := range categories {
		byID[c.ID] = &CategoryNode{Category: c}
	}

	var roots []*CategoryNode
	for _, c := range categories {
		node := byID[c.ID]
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := byID[*c.ParentID]
		if !ok {
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortNodes(roots)
	for _, n := range byID {
		sortNodes(n.Children)
	}
	return roots
}

func sortNodes(nodes []*CategoryNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].Name < nodes[j].Name
	})
}

// DescendantsOf returns the ids of all transitive children of id.
func DescendantsOf(categories []Category, id uuid.UUID) map[uuid.UUID]struct{} {
	childrenOf := make(map[uuid.UUID][]uuid.UUID, len(categories))
	for _, c := range categories {
		if c.ParentID == nil {
			continue
		}
		childrenOf[*c.ParentID] = append(childrenOf[*c.ParentID], c.ID)
	}

	out := make(map[uuid.UUID]struct{})
	stack := append([]uuid.UUID(nil), childrenOf[id]...)
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := out[next]; seen {
			continue
		}
		out[next] = struct{}{}
		stack = append(stack, childrenOf[next]...)
	}
	return out
}

// PathOf walks parent pointers upward from id and returns the ordered path
// root -> id. Traversal is bounded by the category count: exceeding it means
// the parent graph carries a cycle that reparent guards should have prevented,
// and PathOf fails with ErrCycleDetected instead of spinning.
func PathOf(categories []Category, id uuid.UUID) ([]Category, error) {
	byID := make(map[uuid.UUID]Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	current, ok := byID[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}

	path := []Category{current}
	hops := 0
	for current.ParentID != nil {
		hops++
		if hops > len(categories) {
			return nil, ErrCycleDetected
		}
		parent, ok := byID[*current.ParentID]
		if !ok {
			break
		}
		path = append([]Category{parent}, path...)
		current = parent
	}
	return path, nil
}
