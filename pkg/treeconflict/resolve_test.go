package treeconflict

import (
	"context"
	"testing"

	"github.com/cuidi/subversion/pkg/treeconflict/history"
	"github.com/cuidi/subversion/pkg/treeconflict/repofake"
	"github.com/cuidi/subversion/pkg/treeconflict/wcfake"
)

// testEngine builds a private *engine the way NewEngine does, so resolver
// tests exercise the real notification/tracking wiring instead of a bare
// struct literal missing its lock.
func testEngine(repo history.RepoSession, wc WorkingCopy) *engine {
	eng := NewEngine(repo, wc, nil)
	return eng.e
}

func TestResolvePostponeLeavesConflictOpen(t *testing.T) {
	c := treeConflict(OperationUpdate, IncomingEdit, LocalEdited, NodeFile, NodeNone)
	var opt Option
	if err := resolvePostpone(context.Background(), c, &opt); err != nil {
		t.Fatalf("resolvePostpone returned an error: %v", err)
	}
	_, _, tree := c.GetConflicted()
	if !tree {
		t.Fatal("expected the tree conflict to remain open after postpone")
	}
}

func TestAcceptCurrentWCStateResolverChoosesBreakMovedAwayOnMovedVictim(t *testing.T) {
	wc := wcfake.New("/wc")
	wc.Nodes["/wc/victim"] = &wcfake.Node{Kind: NodeFile, MovedTo: "wc/elsewhere"}
	wc.Conflicts["/wc/victim"] = []*ConflictDescriptor{{Kind: ConflictKindTree, Operation: OperationUpdate, Action: IncomingEdit, Reason: LocalMovedAway}}
	e := testEngine(nil, wc)
	c := newConflict(e, "/wc/victim", wc.Conflicts["/wc/victim"], nil)

	resolver := acceptCurrentWCStateResolver(c.Operation(), c.IncomingChange(), c.LocalChange())
	if err := resolver(context.Background(), c, &Option{ID: OptionAcceptCurrentWCState}); err != nil {
		t.Fatalf("resolver failed: %v", err)
	}
	if wc.Nodes["/wc/victim"].MovedTo != "" {
		t.Error("expected break_moved_away to clear the move target")
	}
}

func TestAcceptCurrentWCStateResolverChoosesPlainOtherwise(t *testing.T) {
	wc := wcfake.New("/wc")
	wc.Conflicts["/wc/victim"] = []*ConflictDescriptor{{Kind: ConflictKindTree, Operation: OperationMerge, Action: IncomingAdd, Reason: LocalObstructed}}
	e := testEngine(nil, wc)
	c := newConflict(e, "/wc/victim", wc.Conflicts["/wc/victim"], nil)

	resolver := acceptCurrentWCStateResolver(c.Operation(), c.IncomingChange(), c.LocalChange())
	if err := resolver(context.Background(), c, &Option{ID: OptionPostpone}); err == nil {
		t.Fatal("expected the plain resolver to reject a mismatched option id")
	}
}

func TestResolveAcceptCurrentWCStatePlainRejectsMismatchedOption(t *testing.T) {
	wc := wcfake.New("/wc")
	c := treeConflict(OperationMerge, IncomingAdd, LocalObstructed, NodeFile, NodeFile)
	c.engine = testEngine(nil, wc)
	opt := &Option{ID: OptionPostpone}

	err := resolveAcceptCurrentWCStatePlain(context.Background(), c, opt)
	if err == nil {
		t.Fatal("expected an error for a mismatched option id")
	}
}

func TestResolveIncomingDeleteAcceptDeletesNodeAndClearsConflict(t *testing.T) {
	session := repofake.New([]repofake.Revision{
		{Number: 5, Author: "alice", Files: map[string]repofake.File{}},
		{Number: 8, Author: "bob", ChangedPaths: []history.ChangedPath{{Path: "/trunk/file.txt", Action: 'D'}}},
	})
	wc := wcfake.New("/wc")
	wc.Nodes["/wc/file.txt"] = &wcfake.Node{
		Kind:         NodeFile,
		IsCopy:       true,
		CopyfromRev:  5,
		CopyfromPath: "trunk/file.txt",
	}
	wc.Conflicts["/wc/file.txt"] = []*ConflictDescriptor{
		{
			Kind:           ConflictKindTree,
			Operation:      OperationUpdate,
			Action:         IncomingDelete,
			Reason:         LocalEdited,
			VictimNodeKind: NodeFile,
			SrcLeft:        &VersionInfo{PathInRepos: "trunk/file.txt", PegRev: 5},
			SrcRight:       &VersionInfo{PathInRepos: "trunk/file.txt", PegRev: 8},
		},
	}

	e := testEngine(session, wc)
	c := newConflict(e, "/wc/file.txt", wc.Conflicts["/wc/file.txt"], nil)

	var reg OptionRegistry
	opts := reg.ForTree(c)
	var accept *Option
	for _, o := range opts {
		if o.ID == OptionIncomingDeleteAccept {
			accept = o
		}
	}
	if accept == nil {
		t.Fatal("expected incoming_delete_accept to be offered")
	}

	if err := accept.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, ok := wc.Nodes["/wc/file.txt"]; ok {
		t.Error("expected the victim node to be deleted")
	}
	_, _, tree := c.GetConflicted()
	if tree {
		t.Error("expected the tree conflict to be cleared")
	}
}

func TestResolveIncomingDeleteAcceptFailsWhenCopyOriginMismatches(t *testing.T) {
	session := repofake.New([]repofake.Revision{
		{Number: 5, Author: "alice", Files: map[string]repofake.File{}},
		{Number: 8, Author: "bob", ChangedPaths: []history.ChangedPath{{Path: "/trunk/file.txt", Action: 'D'}}},
	})
	wc := wcfake.New("/wc")
	wc.Nodes["/wc/file.txt"] = &wcfake.Node{
		Kind:         NodeFile,
		IsCopy:       true,
		CopyfromRev:  5,
		CopyfromPath: "branches/other/file.txt", // doesn't match the deleted path trunk/file.txt
	}
	descs := []*ConflictDescriptor{
		{
			Kind:           ConflictKindTree,
			Operation:      OperationUpdate,
			Action:         IncomingDelete,
			Reason:         LocalEdited,
			VictimNodeKind: NodeFile,
			SrcLeft:        &VersionInfo{PathInRepos: "trunk/file.txt", PegRev: 5},
			SrcRight:       &VersionInfo{PathInRepos: "trunk/file.txt", PegRev: 8},
		},
	}
	wc.Conflicts["/wc/file.txt"] = descs

	e := testEngine(session, wc)
	c := newConflict(e, "/wc/file.txt", descs, nil)

	if err := resolveIncomingDeleteAccept(context.Background(), c, &Option{ID: OptionIncomingDeleteAccept}); err == nil {
		t.Fatal("expected an error when the copy origin doesn't match the incoming location")
	}
	if _, ok := wc.Nodes["/wc/file.txt"]; !ok {
		t.Error("expected the victim node to survive a failed precondition check")
	}
}
