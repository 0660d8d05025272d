package catalog

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func sampleForest() (root, mid, leaf, other Category) {
	root = Category{ID: uuid.New(), Name: "Apparel", SortOrder: 1}
	mid = Category{ID: uuid.New(), ParentID: &root.ID, Name: "Shoes", SortOrder: 1}
	leaf = Category{ID: uuid.New(), ParentID: &mid.ID, Name: "Running", SortOrder: 1}
	other = Category{ID: uuid.New(), Name: "Home", SortOrder: 2}
	return
}

func TestBuildTree(t *testing.T) {
	root, mid, leaf, other := sampleForest()
	forest := BuildTree([]Category{leaf, other, mid, root})

	if len(forest) != 2 {
		t.Fatalf("roots: want=2 got=%d", len(forest))
	}
	if forest[0].ID != root.ID || forest[1].ID != other.ID {
		t.Fatalf("roots should be ordered by sort order")
	}
	if len(forest[0].Children) != 1 || forest[0].Children[0].ID != mid.ID {
		t.Fatalf("root should have exactly the mid child")
	}
	if len(forest[0].Children[0].Children) != 1 || forest[0].Children[0].Children[0].ID != leaf.ID {
		t.Fatalf("mid should have exactly the leaf child")
	}
}

func TestBuildTreeOrdersSiblingsBySortOrderThenName(t *testing.T) {
	root := Category{ID: uuid.New(), Name: "Root"}
	b := Category{ID: uuid.New(), ParentID: &root.ID, Name: "Bravo", SortOrder: 1}
	a := Category{ID: uuid.New(), ParentID: &root.ID, Name: "Alpha", SortOrder: 1}
	z := Category{ID: uuid.New(), ParentID: &root.ID, Name: "Zulu", SortOrder: 0}

	forest := BuildTree([]Category{b, a, z, root})
	kids := forest[0].Children
	if len(kids) != 3 {
		t.Fatalf("children: want=3 got=%d", len(kids))
	}
	if kids[0].ID != z.ID || kids[1].ID != a.ID || kids[2].ID != b.ID {
		t.Fatalf("sibling order wrong: got %s, %s, %s", kids[0].Name, kids[1].Name, kids[2].Name)
	}
}

func TestDescendantsOf(t *testing.T) {
	root, mid, leaf, other := sampleForest()
	all := []Category{root, mid, leaf, other}

	desc := DescendantsOf(all, root.ID)
	if len(desc) != 2 {
		t.Fatalf("descendants of root: want=2 got=%d", len(desc))
	}
	if _, ok := desc[mid.ID]; !ok {
		t.Fatalf("mid should be a descendant of root")
	}
	if _, ok := desc[leaf.ID]; !ok {
		t.Fatalf("leaf should be a descendant of root")
	}
	if len(DescendantsOf(all, leaf.ID)) != 0 {
		t.Fatalf("leaf should have no descendants")
	}
}

func TestPathOf(t *testing.T) {
	root, mid, leaf, other := sampleForest()
	all := []Category{root, mid, leaf, other}

	path, err := PathOf(all, leaf.ID)
	if err != nil {
		t.Fatalf("PathOf: %v", err)
	}
	if len(path) != 3 {
		t.Fatalf("path length: want=3 got=%d", len(path))
	}
	if path[0].ID != root.ID || path[2].ID != leaf.ID {
		t.Fatalf("path should run root -> leaf")
	}

	if _, err := PathOf(all, uuid.New()); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPathOfDetectsCycle(t *testing.T) {
	a := Category{ID: uuid.New(), Name: "A"}
	b := Category{ID: uuid.New(), Name: "B"}
	a.ParentID = &b.ID
	b.ParentID = &a.ID

	if _, err := PathOf([]Category{a, b}, a.ID); !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected cycle detection, got %v", err)
	}
}
