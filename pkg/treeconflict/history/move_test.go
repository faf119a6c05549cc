package history

import (
	"context"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeSession is a minimal RepoSession backed by a fixed list of log
// entries and a trivial ancestry model, enough to exercise MoveScanner and
// the locators without a real repository.
type fakeSession struct {
	entries []LogEntry

	// ancestry[relpath][rev] is the path that relpath occupied at rev, for
	// GetLocations to answer with.
	ancestry map[string]map[Revision]string

	latest Revision
}

func (f *fakeSession) Open(context.Context, string) error { return nil }

func (f *fakeSession) GetLog(ctx context.Context, paths []string, start, end Revision, revprops []string, receiver LogReceiver) error {
	// Entries are stored newest-first already, matching the scanner's
	// required walk order.
	for i := range f.entries {
		e := &f.entries[i]
		if e.Revision > start || e.Revision < end {
			continue
		}
		if err := receiver(e); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeSession) GetLocations(ctx context.Context, relpath string, peg Revision, wantedRevs []Revision) (map[Revision]string, error) {
	result := make(map[Revision]string)
	for _, rev := range wantedRevs {
		if byRev, ok := f.ancestry[relpath]; ok {
			if p, ok := byRev[rev]; ok {
				result[rev] = p
				continue
			}
		}
		// Default: assume no rename occurred, i.e. the path is stable.
		result[rev] = relpath
	}
	return result, nil
}

func (f *fakeSession) GetLocationSegments(context.Context, string, Revision, Revision, Revision, LocationSegmentReceiver) error {
	return nil
}

func (f *fakeSession) GetDeletedRev(context.Context, string, Revision, Revision) (Revision, error) {
	return InvalidRevision, nil
}

func (f *fakeSession) RevProp(context.Context, Revision, string) (string, error) { return "", nil }

func (f *fakeSession) CheckPath(context.Context, string, Revision) (NodeKind, error) {
	return NodeNone, nil
}

func (f *fakeSession) GetFile(context.Context, string, Revision, io.Writer) (map[string]string, error) {
	return nil, nil
}

func (f *fakeSession) Reparent(context.Context, string) error { return nil }

func (f *fakeSession) GetLatestRevnum(context.Context) (Revision, error) { return f.latest, nil }

func (f *fakeSession) GetYoungestCommonAncestor(context.Context, Location, Location) (*Location, error) {
	return &Location{}, nil
}

func TestMoveScannerSingleMove(t *testing.T) {
	session := &fakeSession{
		entries: []LogEntry{
			{
				Revision: 5,
				Author:   "alice",
				ChangedPaths: []ChangedPath{
					{Path: "/trunk/new.txt", Action: 'A', CopyFromPath: "/trunk/old.txt", CopyFromRev: 4},
					{Path: "/trunk/old.txt", Action: 'D'},
				},
			},
		},
	}

	table := NewMovesTable()
	scanner := NewMoveScanner(session, table)
	if err := scanner.ScanEntry(context.Background(), &session.entries[0]); err != nil {
		t.Fatalf("ScanEntry failed: %v", err)
	}
	table.DoneScanning()

	moves := table.Moves(5)
	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d", len(moves))
	}
	move := moves[0]
	if move.MovedFromRelpath != "trunk/old.txt" || move.MovedToRelpath != "trunk/new.txt" {
		t.Fatalf("unexpected move: %+v", move)
	}
	if move.Prev() != nil || move.Next() != nil {
		t.Fatalf("single move should have no chain links, got prev=%v next=%v", move.Prev(), move.Next())
	}
}

func TestMoveScannerChain(t *testing.T) {
	// r6 moves trunk/b.txt -> trunk/c.txt; r5 (older, visited second because
	// we walk backwards) moves trunk/a.txt -> trunk/b.txt. The two should
	// link into a chain: a -> b -> c.
	entries := []LogEntry{
		{
			Revision: 6,
			Author:   "bob",
			ChangedPaths: []ChangedPath{
				{Path: "/trunk/c.txt", Action: 'A', CopyFromPath: "/trunk/b.txt", CopyFromRev: 5},
				{Path: "/trunk/b.txt", Action: 'D'},
			},
		},
		{
			Revision: 5,
			Author:   "alice",
			ChangedPaths: []ChangedPath{
				{Path: "/trunk/b.txt", Action: 'A', CopyFromPath: "/trunk/a.txt", CopyFromRev: 4},
				{Path: "/trunk/a.txt", Action: 'D'},
			},
		},
	}
	session := &fakeSession{entries: entries, ancestry: map[string]map[Revision]string{
		"trunk/b.txt": {4: "trunk/a.txt"},
	}}

	table := NewMovesTable()
	scanner := NewMoveScanner(session, table)
	for i := range entries {
		if err := scanner.ScanEntry(context.Background(), &entries[i]); err != nil {
			t.Fatalf("ScanEntry(r%d) failed: %v", entries[i].Revision, err)
		}
	}
	table.DoneScanning()

	moveAB := table.FindMoveFrom(5, "trunk/a.txt")
	moveBC := table.FindMoveFrom(6, "trunk/b.txt")
	if moveAB == nil || moveBC == nil {
		t.Fatalf("expected both moves to be discovered: ab=%v bc=%v", moveAB, moveBC)
	}
	if moveAB.Next() != moveBC {
		t.Fatalf("expected moveAB.Next() == moveBC, got %+v", moveAB.Next())
	}
	if moveBC.Prev() != moveAB {
		t.Fatalf("expected moveBC.Prev() == moveAB, got %+v", moveBC.Prev())
	}
	if !(moveAB.Revision < moveBC.Revision) {
		t.Fatalf("chain invariant violated: %d !< %d", moveAB.Revision, moveBC.Revision)
	}
}

func TestMoveScannerDeletionInsideCopyIsNotMatched(t *testing.T) {
	// cp trunk branches/x; mv branches/x/foo.txt branches/y.txt, all in one
	// revision. The deletion's relpath (branches/x/foo.txt) never appears as
	// a copies map key (the copy's copyfrom path is "trunk", not
	// "branches/x/foo.txt"), so no move is recorded — this is the
	// documented limitation.
	entry := LogEntry{
		Revision: 3,
		Author:   "carol",
		ChangedPaths: []ChangedPath{
			{Path: "/branches/x", Action: 'A', CopyFromPath: "/trunk", CopyFromRev: 2},
			{Path: "/branches/y.txt", Action: 'A', CopyFromPath: "/branches/x/foo.txt", CopyFromRev: 2},
			{Path: "/branches/x/foo.txt", Action: 'D'},
		},
	}
	session := &fakeSession{entries: []LogEntry{entry}}
	table := NewMovesTable()
	scanner := NewMoveScanner(session, table)
	if err := scanner.ScanEntry(context.Background(), &entry); err != nil {
		t.Fatalf("ScanEntry failed: %v", err)
	}
	table.DoneScanning()

	if moves := table.Moves(3); len(moves) != 0 {
		t.Fatalf("expected no moves to be discovered, got %v", moves)
	}
}

func TestLocateDeletionFindsMove(t *testing.T) {
	session := &fakeSession{
		entries: []LogEntry{
			{
				Revision: 5,
				Author:   "alice",
				ChangedPaths: []ChangedPath{
					{Path: "/trunk/new.txt", Action: 'A', CopyFromPath: "/trunk/old.txt", CopyFromRev: 4},
					{Path: "/trunk/old.txt", Action: 'D'},
				},
			},
			{Revision: 3, Author: "bob", ChangedPaths: []ChangedPath{{Path: "/trunk/other.txt", Action: 'M'}}},
		},
	}

	table := NewMovesTable()
	result, err := LocateDeletion(context.Background(), session, table, "trunk", "old.txt", 5, 1, nil)
	if err != nil {
		t.Fatalf("LocateDeletion failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected a deletion result")
	}
	if result.DeletedRev != 5 || result.DeletedRevAuthor != "alice" {
		t.Fatalf("unexpected deletion result: %+v", result)
	}
	if result.Move == nil || result.Move.MovedToRelpath != "trunk/new.txt" {
		t.Fatalf("expected cross-linked move to trunk/new.txt, got %+v", result.Move)
	}
}

func TestLocateDeletionNoMatch(t *testing.T) {
	session := &fakeSession{entries: []LogEntry{
		{Revision: 3, Author: "bob", ChangedPaths: []ChangedPath{{Path: "/trunk/other.txt", Action: 'M'}}},
	}}
	table := NewMovesTable()
	result, err := LocateDeletion(context.Background(), session, table, "trunk", "missing.txt", 3, 1, nil)
	if err != nil {
		t.Fatalf("LocateDeletion failed: %v", err)
	}
	if result != nil {
		t.Fatalf("expected no result, got %+v", result)
	}
}

func TestLocateEditsOrdersAscendingAndTraversesCopy(t *testing.T) {
	entries := []LogEntry{
		{Revision: 7, Author: "carol", ChangedPaths: []ChangedPath{{Path: "/trunk/f.txt", Action: 'M'}}},
		{Revision: 6, Author: "bob", ChangedPaths: []ChangedPath{{Path: "/trunk/f.txt", Action: 'A', CopyFromPath: "/trunk/old.txt", CopyFromRev: 5}}},
		{Revision: 5, Author: "alice", ChangedPaths: []ChangedPath{{Path: "/trunk/old.txt", Action: 'M'}}},
	}
	session := &fakeSession{entries: entries}

	records, err := LocateEdits(context.Background(), session, "/trunk/f.txt", NodeFile, 7, 5)
	if err != nil {
		t.Fatalf("LocateEdits failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 edit records, got %d: %+v", len(records), records)
	}
	for i := 1; i < len(records); i++ {
		if records[i-1].Revision >= records[i].Revision {
			t.Fatalf("expected ascending revisions, got %+v", records)
		}
	}
	if diff := cmp.Diff("trunk/old.txt", records[0].ReposRelpath); diff != "" {
		t.Fatalf("expected the oldest record to use the copyfrom path (-want +got):\n%s", diff)
	}
}

func TestLocateEditsReadsModifiedFlagsFromTheChangeRecord(t *testing.T) {
	entries := []LogEntry{
		{Revision: 4, Author: "carol", ChangedPaths: []ChangedPath{
			{Path: "/trunk/f.txt", Action: 'M', TextModified: True, PropsModified: False},
		}},
		{Revision: 3, Author: "bob", ChangedPaths: []ChangedPath{
			{Path: "/trunk/f.txt", Action: 'M', TextModified: False, PropsModified: True},
		}},
	}
	session := &fakeSession{entries: entries}

	records, err := LocateEdits(context.Background(), session, "/trunk/f.txt", NodeFile, 3, 4)
	if err != nil {
		t.Fatalf("LocateEdits failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 edit records, got %d: %+v", len(records), records)
	}
	// Ascending order: r3 first, r4 second.
	if records[0].TextModified != False || records[0].PropsModified != True {
		t.Fatalf("r3 record should carry its own flags, got %+v", records[0])
	}
	if records[1].TextModified != True || records[1].PropsModified != False {
		t.Fatalf("r4 record should carry its own flags, got %+v", records[1])
	}
}
