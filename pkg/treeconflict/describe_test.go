package treeconflict

import (
	"context"
	"strings"
	"testing"

	"github.com/cuidi/subversion/pkg/treeconflict/history"
	"github.com/cuidi/subversion/pkg/treeconflict/repofake"
)

func TestFormatRevisionListShort(t *testing.T) {
	got := FormatRevisionList([]int64{1, 2, 3})
	want := "r1, r2, r3"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatRevisionListThirteenStaysExplicit(t *testing.T) {
	revs := make([]int64, 13)
	for i := range revs {
		revs[i] = int64(i + 1)
	}
	got := FormatRevisionList(revs)
	if strings.Contains(got, "omitted") {
		t.Fatalf("13 revisions should not be abbreviated, got %q", got)
	}
	if strings.Count(got, "r") != 13 {
		t.Fatalf("expected 13 explicit revisions, got %q", got)
	}
}

func TestFormatRevisionListAbbreviatesBeyondThirteen(t *testing.T) {
	revs := make([]int64, 20)
	for i := range revs {
		revs[i] = int64(i + 1)
	}
	got := FormatRevisionList(revs)
	want := "r1, r2, r3, r4, [12 revisions omitted for brevity], r17, r18, r19, r20"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAppendMovedToChainNilMoveReturnsInputUnchanged(t *testing.T) {
	desc := "The item was deleted in revision 5 by alice."
	if got := appendMovedToChain(desc, nil); got != desc {
		t.Fatalf("got %q, want unchanged %q", got, desc)
	}
}

func TestAppendMovedToChainWalksChain(t *testing.T) {
	// r6 moves trunk/b.txt -> trunk/c.txt; r5 moves trunk/a.txt -> trunk/b.txt.
	// Scanning newest-first links them into a chain headed at the r5 move.
	session := repofake.New([]repofake.Revision{
		{
			Number: 5,
			Author: "alice",
			ChangedPaths: []history.ChangedPath{
				{Path: "/trunk/b.txt", Action: 'A', CopyFromPath: "/trunk/a.txt", CopyFromRev: 4},
				{Path: "/trunk/a.txt", Action: 'D'},
			},
		},
		{
			Number: 6,
			Author: "bob",
			ChangedPaths: []history.ChangedPath{
				{Path: "/trunk/c.txt", Action: 'A', CopyFromPath: "/trunk/b.txt", CopyFromRev: 5},
				{Path: "/trunk/b.txt", Action: 'D'},
			},
		},
	})

	table := history.NewMovesTable()
	scanner := history.NewMoveScanner(session, table)
	ctx := context.Background()
	entries := []*history.LogEntry{
		{Revision: 6, Author: "bob", ChangedPaths: session.Revisions[1].ChangedPaths},
		{Revision: 5, Author: "alice", ChangedPaths: session.Revisions[0].ChangedPaths},
	}
	for _, e := range entries {
		if err := scanner.ScanEntry(ctx, e); err != nil {
			t.Fatalf("ScanEntry failed: %v", err)
		}
	}
	table.DoneScanning()

	moveAB := table.FindMoveFrom(5, "trunk/a.txt")
	if moveAB == nil {
		t.Fatal("expected a move to be discovered for trunk/a.txt")
	}

	desc := appendMovedToChain("The item was deleted in revision 5 by alice.", moveAB)
	want := "The item was deleted in revision 5 by alice. It was then moved to 'trunk/c.txt' in revision 6 by bob."
	if desc != want {
		t.Fatalf("got %q, want %q", desc, want)
	}
}

func TestDescribeIncomingDeleteReverseAdditionWording(t *testing.T) {
	c := treeConflict(OperationUpdate, IncomingDelete, LocalEdited, NodeFile, NodeNone)
	details := &IncomingDeleteDetails{
		AddedRev:     9,
		DeletedRev:   history.InvalidRevision,
		ReposRelpath: "trunk/file.txt",
		RevAuthor:    "carol",
	}
	got := describeIncomingDelete(c, details)
	want := "File did not exist before it was added by carol in revision 9."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDescribeIncomingDeleteForwardVariesByOperation(t *testing.T) {
	desc := &ConflictDescriptor{
		Kind:           ConflictKindTree,
		Operation:      OperationSwitch,
		Action:         IncomingDelete,
		VictimNodeKind: NodeDir,
		SrcLeft:        &VersionInfo{PathInRepos: "branches/old/dir", PegRev: 5},
		SrcRight:       &VersionInfo{PathInRepos: "branches/new/dir", PegRev: 8},
	}
	c := newConflict(nil, "/wc/dir", []*ConflictDescriptor{desc}, nil)
	details := &IncomingDeleteDetails{
		DeletedRev:   8,
		AddedRev:     history.InvalidRevision,
		ReposRelpath: "branches/new/dir",
		RevAuthor:    "dave",
	}
	got := describeIncomingDelete(c, details)
	want := "Directory switched from 'branches/old/dir' to 'branches/new/dir' was deleted by dave in revision 8."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDescribeIncomingReplaceDelegatesToDelete(t *testing.T) {
	c := treeConflict(OperationUpdate, IncomingReplace, LocalEdited, NodeFile, NodeFile)
	details := &IncomingDeleteDetails{
		DeletedRev:        4,
		AddedRev:          history.InvalidRevision,
		RevAuthor:         "erin",
		ReplacingNodeKind: NodeDir,
	}
	got := describeIncoming(c, details)
	want := describeIncomingDelete(c, details)
	if got != want {
		t.Fatalf("expected replace to delegate to delete wording, got %q want %q", got, want)
	}
	if !strings.Contains(got, "replaced with a directory") {
		t.Fatalf("expected replacing-node-kind wording, got %q", got)
	}
}

func TestDescribeIncomingAddVariesByOperationAndKind(t *testing.T) {
	desc := &ConflictDescriptor{
		Kind:         ConflictKindTree,
		Operation:    OperationUpdate,
		Action:       IncomingAdd,
		IncomingKind: NodeDir,
		SrcRight:     &VersionInfo{PathInRepos: "trunk/newdir", PegRev: 12},
	}
	c := newConflict(nil, "/wc/newdir", []*ConflictDescriptor{desc}, nil)
	details := &IncomingAddDetails{AddedRev: 12, AddedRevAuthor: "frank", DeletedRev: history.InvalidRevision}
	got := describeIncomingAdd(c, details)
	want := "A new directory appeared during update to r12; it was added by frank in revision 12."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDescribeIncomingEditMergeMultipleRevisions(t *testing.T) {
	edits := IncomingEditDetails{
		{Revision: 3, Author: "a"},
		{Revision: 4, Author: "b"},
	}
	got := describeIncomingEdit(OperationMerge, edits)
	want := "The item was changed across revisions r3, r4."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
