package history

import (
	"context"
	"fmt"
)

// DeletionResult is the outcome of LocateDeletion: the revision a node was
// deleted or replaced in, who did it, and — if MoveScanner discovered one —
// the move that explains where the node went.
type DeletionResult struct {
	DeletedRev        Revision
	DeletedRevAuthor  string
	ReplacingNodeKind NodeKind
	Move              *RepoMove
}

// LocateDeletion finds the revision in which parentRelpath/deletedBasename
// was deleted or replaced within [startRev, endRev], and cross-references
// the move discovered (if any) by scanning every revision walked along the
// way. If related is non-nil, a candidate deletion is only accepted if the
// node shares ancestry with related at the point just before the deletion —
// this is how the engine avoids attributing an unrelated node's deletion to
// the victim when basenames collide across unrelated history.
//
// LocateDeletion drives its own MoveScanner over the same walk, so the
// revisions visited here also populate table with any moves they contain;
// callers reuse table across locator calls for a single conflict so that
// move chains spanning the whole queried range stay linked.
func LocateDeletion(
	ctx context.Context,
	session RepoSession,
	table *MovesTable,
	parentRelpath, deletedBasename string,
	startRev, endRev Revision,
	related *Location,
) (*DeletionResult, error) {
	fullPath := joinRelpath(normalizeRelpath(parentRelpath), deletedBasename)
	result := &DeletionResult{DeletedRev: InvalidRevision}
	scanner := NewMoveScanner(session, table)

	walkErr := session.GetLog(ctx, []string{parentRelpath}, startRev, endRev, []string{RevPropAuthor}, func(entry *LogEntry) error {
		if err := scanner.ScanEntry(ctx, entry); err != nil {
			return err
		}

		for _, cp := range entry.ChangedPaths {
			if cp.Action != 'D' && cp.Action != 'R' {
				continue
			}
			if normalizeRelpath(cp.Path) != fullPath {
				continue
			}

			if related != nil {
				ancestor, err := session.GetYoungestCommonAncestor(ctx, *related, Location{RelPath: fullPath, Peg: entry.Revision - 1})
				if err != nil {
					return fmt.Errorf("history: compute youngest common ancestor: %w", err)
				}
				if ancestor == nil {
					continue
				}
			}

			result.DeletedRev = entry.Revision
			result.DeletedRevAuthor = entry.Author
			if cp.Action == 'R' {
				result.ReplacingNodeKind = cp.NodeKind
			} else {
				result.ReplacingNodeKind = NodeNone
			}
			return cancelled
		}
		return nil
	})
	if err := errCancelledOrNil(walkErr); err != nil {
		return nil, err
	}

	if !result.DeletedRev.Valid() {
		return nil, nil
	}

	result.Move = table.FindMoveFrom(result.DeletedRev, fullPath)
	return result, nil
}
