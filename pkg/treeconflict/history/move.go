package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/cuidi/subversion/pkg/treeconflict/conflicterr"
)

// RepoMove is a single discovered server-side move: a copy paired with a
// deletion of its source within the same revision, ancestrally verified.
// RepoMove chains are acyclic by construction (Next is only ever set to a
// move with a strictly greater revision) and are owned by whichever
// MovesTable discovered them; a table is in turn owned by the single
// ConflictEnvelope that requested the scan.
type RepoMove struct {
	MovedFromRelpath string
	MovedToRelpath   string
	Revision         Revision
	Author           string
	CopyFromRev      Revision

	prev *RepoMove
	next *RepoMove
}

// Prev returns the chronologically earlier move of the same node, or nil.
func (m *RepoMove) Prev() *RepoMove {
	if m == nil {
		return nil
	}
	return m.prev
}

// Next returns the chronologically later move of the same node, or nil.
func (m *RepoMove) Next() *RepoMove {
	if m == nil {
		return nil
	}
	return m.next
}

// MovesTable maps a revision to the ordered list of moves discovered in it.
// The transient moved-paths index used during scanning is dropped once
// scanning completes.
type MovesTable struct {
	byRevision map[Revision][]*RepoMove
	movedPaths map[string]*RepoMove
}

// NewMovesTable creates an empty MovesTable ready for scanning.
func NewMovesTable() *MovesTable {
	return &MovesTable{
		byRevision: make(map[Revision][]*RepoMove),
		movedPaths: make(map[string]*RepoMove),
	}
}

// Moves returns the moves discovered in rev, in discovery order.
func (t *MovesTable) Moves(rev Revision) []*RepoMove {
	return t.byRevision[rev]
}

// FindMoveFrom returns the move discovered in rev whose source is
// fromRelpath, or nil if none was discovered.
func (t *MovesTable) FindMoveFrom(rev Revision, fromRelpath string) *RepoMove {
	for _, m := range t.byRevision[rev] {
		if m.MovedFromRelpath == fromRelpath {
			return m
		}
	}
	return nil
}

// DoneScanning discards the transient moved-paths index. Call it once the
// walk that populated this table has finished; further scans into the same
// table after DoneScanning will not be able to chain onto moves discovered
// before the call.
func (t *MovesTable) DoneScanning() {
	t.movedPaths = nil
}

// copyCandidate is one copy recorded against a copyfrom relpath during a
// single log entry's partition step.
type copyCandidate struct {
	to      string
	fromRev Revision
}

// MoveScanner consumes a log stream newest-to-oldest and records the
// server-side moves it discovers into a shared MovesTable.
type MoveScanner struct {
	session RepoSession
	table   *MovesTable
}

// NewMoveScanner creates a scanner that records discoveries into table.
func NewMoveScanner(session RepoSession, table *MovesTable) *MoveScanner {
	return &MoveScanner{session: session, table: table}
}

// ScanEntry processes a single log entry (spec section 4.2's algorithm,
// steps 1-5). Entries must be fed newest-to-oldest for move chains to link
// correctly, since a later move of a node is only recognized if it was
// already recorded in the table's moved-paths index.
func (s *MoveScanner) ScanEntry(ctx context.Context, entry *LogEntry) error {
	if s.table.movedPaths == nil {
		return errors.New("history: ScanEntry called after DoneScanning")
	}

	// Step 1: partition changed paths into copies and deletions.
	copies := make(map[string][]copyCandidate)
	var deleted []string
	for _, cp := range entry.ChangedPaths {
		path := normalizeRelpath(cp.Path)
		switch cp.Action {
		case 'A':
			if cp.CopyFromPath != "" {
				from := normalizeRelpath(cp.CopyFromPath)
				copies[from] = append(copies[from], copyCandidate{to: path, fromRev: cp.CopyFromRev})
			}
		case 'D':
			deleted = append(deleted, path)
		case 'R':
			deleted = append(deleted, path)
			if cp.CopyFromPath != "" {
				from := normalizeRelpath(cp.CopyFromPath)
				copies[from] = append(copies[from], copyCandidate{to: path, fromRev: cp.CopyFromRev})
			}
		}
	}

	// Step 2: for each deletion, test every copy whose recorded copyfrom
	// path equals the deleted path, verifying ancestry before accepting it
	// as a move. Deletions that fall inside a copy (rather than being one
	// themselves) never match here, since their relpath won't appear as a
	// copies map key — this is the documented limitation from spec section
	// 9: a "cp A B; mv B/foo C/foo" within one revision is not detected.
	for _, deletedRelpath := range deleted {
		for _, cand := range copies[deletedRelpath] {
			locs, err := s.session.GetLocations(ctx, deletedRelpath, entry.Revision-1, []Revision{cand.fromRev})
			if err != nil {
				return fmt.Errorf("history: verify ancestry of %s: %w", deletedRelpath, err)
			}
			if locs[cand.fromRev] != deletedRelpath {
				continue
			}

			move := &RepoMove{
				MovedFromRelpath: deletedRelpath,
				MovedToRelpath:   cand.to,
				Revision:         entry.Revision,
				Author:           entry.Author,
				CopyFromRev:      cand.fromRev,
			}

			// Step 3: chain onto a later move of the same node, if one was
			// already discovered (we're walking backwards).
			if next := s.table.movedPaths[move.MovedToRelpath]; next != nil {
				locs, err := s.session.GetLocations(ctx, next.MovedFromRelpath, next.Revision-1, []Revision{move.CopyFromRev})
				if err != nil {
					return fmt.Errorf("history: verify chain link into r%d: %w", next.Revision, err)
				}
				if locs[move.CopyFromRev] == move.MovedFromRelpath {
					if move.Revision >= next.Revision {
						return fmt.Errorf("history: move chain out of order: r%d >= r%d", move.Revision, next.Revision)
					}
					move.next = next
					next.prev = move
				}
			}

			// Step 4: register this move as the current head for its source
			// path so that an older move discovered later can chain onto it.
			s.table.movedPaths[move.MovedFromRelpath] = move

			// Step 5: record the move against its revision.
			s.table.byRevision[entry.Revision] = append(s.table.byRevision[entry.Revision], move)
		}
	}

	return nil
}

// cancelled is the sentinel a receiver returns to stop a walk early once it
// has found what it needs.
var cancelled = conflicterr.Cancelled

// errCancelledOrNil normalizes the result of a receiver-driven walk: the
// Cancelled sentinel means the receiver found what it needed and stopped
// the walk deliberately, which callers should treat as success.
func errCancelledOrNil(err error) error {
	if errors.Is(err, conflicterr.Cancelled) {
		return nil
	}
	return err
}
