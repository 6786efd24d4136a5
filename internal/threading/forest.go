package threading

import (
	"sort"
)

// Forest is the parent/child structure over a Store. Roots are grouped by
// their author; children are kept per parent in insertion order.
type Forest struct {
	store    *Store
	roots    map[string][]int
	children [][]int
	orphans  []int
}

// BuildForest links every message of the store once, in store order.
// A message whose parent is not in the store is recorded as an orphan and
// left out of every thread.
func BuildForest(store *Store) *Forest {
	f := &Forest{
		store:    store,
		roots:    make(map[string][]int),
		children: make([][]int, store.Len()),
	}
	for idx := 0; idx < store.Len(); idx++ {
		msg := store.At(idx)
		if msg.IsRoot() {
			f.roots[msg.UserID] = append(f.roots[msg.UserID], idx)
			continue
		}
		parent, ok := store.Lookup(msg.ParentID)
		if !ok {
			f.orphans = append(f.orphans, idx)
			continue
		}
		f.children[parent] = append(f.children[parent], idx)
	}
	return f
}

// Store returns the backing arena.
func (f *Forest) Store() *Store {
	return f.store
}

// Users returns the ids of users owning at least one thread, ascending.
func (f *Forest) Users() []string {
	users := make([]string, 0, len(f.roots))
	for user := range f.roots {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}

// Roots returns the user's root message indices in encounter order.
func (f *Forest) Roots(userID string) []int {
	return f.roots[userID]
}

// Children returns the direct children of idx in insertion order.
func (f *Forest) Children(idx int) []int {
	return f.children[idx]
}

// Orphans returns the indices of messages whose parent is missing.
func (f *Forest) Orphans() []int {
	return f.orphans
}
