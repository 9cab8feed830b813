package gitlib

import (
	git2go "github.com/libgit2/git2go/v34"
)

// Tree wraps a libgit2 tree. Only identity and lifetime are needed here;
// historian never walks tree entries directly, it diffs whole trees.
type Tree struct {
	tree *git2go.Tree
	repo *Repository
}

// Hash returns the tree hash.
func (t *Tree) Hash() Hash {
	return HashFromOid(t.tree.Id())
}

// Free releases the tree resources.
func (t *Tree) Free() {
	if t.tree != nil {
		t.tree.Free()
		t.tree = nil
	}
}

// Native returns the underlying libgit2 tree.
func (t *Tree) Native() *git2go.Tree {
	return t.tree
}
