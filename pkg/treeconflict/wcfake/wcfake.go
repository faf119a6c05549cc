// Package wcfake provides an in-memory treeconflict.WorkingCopy, backed by
// a map of path to node state, for use in engine tests and the svnresolve
// CLI's demo mode. It does no disk I/O.
package wcfake

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/cuidi/subversion/pkg/treeconflict"
	"github.com/cuidi/subversion/pkg/treeconflict/history"
)

// Node is the state of one path in the fake working copy.
type Node struct {
	Kind        treeconflict.NodeKind
	Contents    []byte
	Props       map[string]string
	MovedTo     string
	MovedFrom   string
	CopyfromRev history.Revision
	CopyfromPath string
	IsCopy      bool
}

// WC is an in-memory WorkingCopy. Conflicts are seeded directly into
// Conflicts before opening them through an Engine.
type WC struct {
	mu          sync.Mutex
	Root        string
	Nodes       map[string]*Node
	Conflicts   map[string][]*treeconflict.ConflictDescriptor
	locked      map[string]bool
	Notifications []treeconflict.Notification
}

// New creates an empty fake working copy rooted at root.
func New(root string) *WC {
	return &WC{
		Root:      root,
		Nodes:     make(map[string]*Node),
		Conflicts: make(map[string][]*treeconflict.ConflictDescriptor),
		locked:    make(map[string]bool),
	}
}

func (w *WC) ReadConflictDescriptors(ctx context.Context, abspath string) ([]*treeconflict.ConflictDescriptor, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conflicts[abspath], nil
}

func (w *WC) AcquireForResolve(ctx context.Context, abspath string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.locked[abspath] {
		return fmt.Errorf("wcfake: %s is already locked", abspath)
	}
	w.locked[abspath] = true
	return nil
}

func (w *WC) Release(ctx context.Context, abspath string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.locked, abspath)
	return nil
}

func (w *WC) DeleteNode(ctx context.Context, abspath string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.Nodes, abspath)
	return nil
}

func (w *WC) CopyNode(ctx context.Context, src, dst string, metadataOnly bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.Nodes[src]
	if !ok {
		return fmt.Errorf("wcfake: no such node %s", src)
	}
	copied := *n
	copied.IsCopy = true
	w.Nodes[dst] = &copied
	return nil
}

func (w *WC) AddReposFile(ctx context.Context, abspath string, contents io.Reader, props map[string]string, url string, peg history.Revision) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	data, err := io.ReadAll(contents)
	if err != nil {
		return err
	}
	w.Nodes[abspath] = &Node{Kind: treeconflict.NodeFile, Contents: data, Props: props}
	return nil
}

func (w *WC) MergeFiles(ctx context.Context, base, their, mine string, propDiffs map[string]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.Nodes[mine]
	if !ok {
		n = &Node{Kind: treeconflict.NodeFile}
		w.Nodes[mine] = n
	}
	if n.Props == nil {
		n.Props = make(map[string]string)
	}
	for k, v := range propDiffs {
		n.Props[k] = v
	}
	return nil
}

func (w *WC) ClearTreeConflict(ctx context.Context, abspath string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var kept []*treeconflict.ConflictDescriptor
	for _, d := range w.Conflicts[abspath] {
		if d.Kind != treeconflict.ConflictKindTree {
			kept = append(kept, d)
		}
	}
	w.Conflicts[abspath] = kept
	return nil
}

func (w *WC) BreakMovedAway(ctx context.Context, abspath string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if n, ok := w.Nodes[abspath]; ok {
		n.MovedTo = ""
	}
	return nil
}

func (w *WC) RaiseMovedAway(ctx context.Context, abspath string) error {
	return nil
}

func (w *WC) UpdateMovedAwayNode(ctx context.Context, abspath string) error {
	return nil
}

func (w *WC) NodeOrigin(ctx context.Context, abspath string) (bool, history.Revision, string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.Nodes[abspath]
	if !ok {
		return false, history.InvalidRevision, "", nil
	}
	return n.IsCopy, n.CopyfromRev, n.CopyfromPath, nil
}

func (w *WC) NodeMovedAway(ctx context.Context, abspath string) (string, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.Nodes[abspath]
	if !ok || n.MovedTo == "" {
		return "", false, nil
	}
	return n.MovedTo, true, nil
}

func (w *WC) NodeMovedHere(ctx context.Context, abspath string) (string, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.Nodes[abspath]
	if !ok || n.MovedFrom == "" {
		return "", false, nil
	}
	return n.MovedFrom, true, nil
}

func (w *WC) WCRoot(ctx context.Context, abspath string) (string, error) {
	return w.Root, nil
}

func (w *WC) Tmpdir(ctx context.Context, abspath string) (string, error) {
	return w.Root + "/.svn/tmp", nil
}

func (w *WC) PropList(ctx context.Context, abspath string) (map[string]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.Nodes[abspath]
	if !ok {
		return nil, nil
	}
	return n.Props, nil
}

func (w *WC) NodeExists(ctx context.Context, abspath string) (treeconflict.NodeKind, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.Nodes[abspath]
	if !ok {
		return treeconflict.NodeNone, nil
	}
	return n.Kind, nil
}

func (w *WC) CheckoutTo(ctx context.Context, url string, peg history.Revision, dst string, notify func(treeconflict.Notification)) error {
	w.mu.Lock()
	w.Nodes[dst] = &Node{Kind: treeconflict.NodeDir}
	w.mu.Unlock()
	if notify != nil {
		notify(treeconflict.Notification{Action: "checkout", Path: dst})
	}
	return nil
}

func (w *WC) RemoveFromRevisionControl(ctx context.Context, abspath string) error {
	return nil
}

func (w *WC) RenameOnDisk(ctx context.Context, src, dst string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if n, ok := w.Nodes[src]; ok {
		w.Nodes[dst] = n
		delete(w.Nodes, src)
	}
	return nil
}

func (w *WC) Merge(ctx context.Context, leftURL string, leftPeg history.Revision, rightURL string, rightPeg history.Revision, target string, opts treeconflict.MergeOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.Nodes[target]; !ok {
		w.Nodes[target] = &Node{Kind: treeconflict.NodeDir}
	}
	return nil
}

func (w *WC) ConflictedPaths(ctx context.Context, root string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var paths []string
	for p, descs := range w.Conflicts {
		if len(descs) == 0 {
			continue
		}
		if root == "" || root == w.Root || hasPrefixPath(p, root) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func hasPrefixPath(p, root string) bool {
	return len(p) >= len(root) && p[:len(root)] == root
}

func (w *WC) ResolveConflict(ctx context.Context, abspath string, kind treeconflict.ConflictKind, propName string, choice treeconflict.ConflictChoice) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var kept []*treeconflict.ConflictDescriptor
	for _, d := range w.Conflicts[abspath] {
		if d.Kind == kind && (kind != treeconflict.ConflictKindProperty || d.PropName == propName) {
			continue
		}
		kept = append(kept, d)
	}
	w.Conflicts[abspath] = kept
	return nil
}

var _ treeconflict.WorkingCopy = (*WC)(nil)
