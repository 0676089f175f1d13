// Package tree implements traversal and structural editing of
// node mapping trees.
//
// A tree is owned top-down through NodeMapping.Children. Parents are
// never stored as pointers: a Tree keeps an id index and resolves
// ParentID on demand, so the parent view always agrees with the
// actual children lists.
//
// Hydration assigns missing ids from a domain.IDAllocator and sets
// every child's ParentID. Edits (replace, insert, delete) run on a
// hydrated Tree and fail with a *domain.TreeIntegrityError when they
// refer to a mapping the tree does not contain, unless the tree was
// created WithLenient.
package tree
