package threading

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tOgg1/threadreport/internal/models"
)

// ErrCyclicThread is returned when a walk reaches a message twice.
var ErrCyclicThread = errors.New("cyclic thread")

// Thread is a root message together with its resolved descendants.
type Thread struct {
	Root        *models.Message
	Descendants []*models.Message
}

// Size counts the root and every descendant.
func (t *Thread) Size() int {
	return 1 + len(t.Descendants)
}

// Thread resolves the thread rooted at rootIdx.
func (f *Forest) Thread(rootIdx int) (*Thread, error) {
	descendants, err := f.Resolve(rootIdx)
	if err != nil {
		return nil, err
	}
	return &Thread{Root: f.store.At(rootIdx), Descendants: descendants}, nil
}

// Resolve returns every message below rootIdx in display order, root
// excluded: depth-first, each message followed by its whole subtree,
// siblings by ascending timestamp. Equal timestamps keep insertion order.
func (f *Forest) Resolve(rootIdx int) ([]*models.Message, error) {
	if len(f.children[rootIdx]) == 0 {
		return nil, nil
	}

	seen := map[int]struct{}{rootIdx: {}}
	out := make([]*models.Message, 0, len(f.children[rootIdx]))
	stack := f.pushChildren(nil, rootIdx)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[idx]; ok {
			return nil, fmt.Errorf("%w: message %s under root %s", ErrCyclicThread, f.store.At(idx).ID, f.store.At(rootIdx).ID)
		}
		seen[idx] = struct{}{}
		out = append(out, f.store.At(idx))
		stack = f.pushChildren(stack, idx)
	}
	return out, nil
}

// pushChildren pushes the children of idx so that the earliest is on top.
func (f *Forest) pushChildren(stack []int, idx int) []int {
	kids := f.children[idx]
	if len(kids) == 0 {
		return stack
	}
	ordered := append([]int(nil), kids...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return f.store.At(ordered[i]).Timestamp < f.store.At(ordered[j]).Timestamp
	})
	for i := len(ordered) - 1; i >= 0; i-- {
		stack = append(stack, ordered[i])
	}
	return stack
}
