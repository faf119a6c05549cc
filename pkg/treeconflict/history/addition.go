package history

import (
	"context"
	"fmt"
)

// locateAddition walks location segments for relpath@peg over [start, end]
// and returns the revision and repository relpath of the first segment that
// is not a gap (and, if parentFilter is non-empty, lies under it). It
// returns InvalidRevision if no such segment is found.
func locateAddition(ctx context.Context, session RepoSession, relpath string, peg, start, end Revision, parentFilter string) (Revision, string, error) {
	addedRev := InvalidRevision
	var addedRelpath string

	walkErr := session.GetLocationSegments(ctx, relpath, peg, start, end, func(seg *LocationSegment) error {
		if seg.Path == "" {
			return nil
		}
		path := normalizeRelpath(seg.Path)
		if parentFilter != "" && !underParent(path, parentFilter) {
			return nil
		}
		addedRev = seg.RangeStart
		addedRelpath = path
		return cancelled
	})
	if err := errCancelledOrNil(walkErr); err != nil {
		return InvalidRevision, "", err
	}
	return addedRev, addedRelpath, nil
}

// detectReplacement reports the node kind the addition replaced, or
// NodeNone if it was a plain addition onto previously-unoccupied history.
func detectReplacement(ctx context.Context, session RepoSession, relpath string, addedRev Revision) (NodeKind, error) {
	if addedRev <= 0 {
		return NodeNone, nil
	}
	before, err := session.CheckPath(ctx, relpath, addedRev-1)
	if err != nil {
		return NodeNone, fmt.Errorf("history: check path before addition: %w", err)
	}
	if before == NodeNone {
		return NodeNone, nil
	}
	kind, err := session.CheckPath(ctx, relpath, addedRev)
	if err != nil {
		return NodeNone, fmt.Errorf("history: check path at addition: %w", err)
	}
	return kind, nil
}

// LocateAdditionForReverse finds the revision at which oldRelpath was added
// (searching its location-segment history back from oldRev), for use when
// the operation applying the change is running in reverse — a reverse-merge
// or a backwards update/switch — so that what looks like an "incoming
// delete" in the forward direction is really undoing that addition.
func LocateAdditionForReverse(ctx context.Context, session RepoSession, oldRelpath string, oldRev, newRev Revision) (*IncomingDeleteDetails, error) {
	addedRev, addedRelpath, err := locateAddition(ctx, session, oldRelpath, oldRev, oldRev, newRev, "")
	if err != nil {
		return nil, err
	}

	details := &IncomingDeleteDetails{
		DeletedRev:   InvalidRevision,
		AddedRev:     addedRev,
		ReposRelpath: addedRelpath,
	}
	if !addedRev.Valid() {
		return details, nil
	}

	author, err := session.RevProp(ctx, addedRev, RevPropAuthor)
	if err != nil {
		return nil, fmt.Errorf("history: fetch author of r%d: %w", addedRev, err)
	}
	details.RevAuthor = author

	kind, err := detectReplacement(ctx, session, addedRelpath, addedRev)
	if err != nil {
		return nil, err
	}
	details.ReplacingNodeKind = kind

	return details, nil
}

// LocateAdditionSegment finds the revision and repository relpath at which
// relpath was added, considering only locations under parentFilter — used by the
// directory-replace-and-merge resolver to find the pre-replacement copy's
// own addition point before merging everything since into the replacement.
func LocateAdditionSegment(ctx context.Context, session RepoSession, relpath string, peg Revision, parentFilter string) (Revision, string, error) {
	return locateAddition(ctx, session, relpath, peg, peg, 0, parentFilter)
}

// LocateAdditionAndDeletion finds the revision newRelpath was added at
// (peg newRev), and, if the repository has advanced past newRev, whether it
// was subsequently deleted.
func LocateAdditionAndDeletion(ctx context.Context, session RepoSession, newRelpath string, newRev Revision) (*IncomingAddDetails, error) {
	addedRev, addedRelpath, err := locateAddition(ctx, session, newRelpath, newRev, newRev, 0, "")
	if err != nil {
		return nil, err
	}

	details := &IncomingAddDetails{
		AddedRev:     addedRev,
		DeletedRev:   InvalidRevision,
		ReposRelpath: addedRelpath,
	}
	if addedRev.Valid() {
		author, err := session.RevProp(ctx, addedRev, RevPropAuthor)
		if err != nil {
			return nil, fmt.Errorf("history: fetch author of r%d: %w", addedRev, err)
		}
		details.AddedRevAuthor = author
	}

	head, err := session.GetLatestRevnum(ctx)
	if err != nil {
		return nil, fmt.Errorf("history: fetch latest revision: %w", err)
	}
	if newRev < head {
		deletedRev, err := session.GetDeletedRev(ctx, newRelpath, newRev, head)
		if err != nil {
			return nil, fmt.Errorf("history: fetch deleted revision: %w", err)
		}
		if deletedRev.Valid() {
			details.DeletedRev = deletedRev
			author, err := session.RevProp(ctx, deletedRev, RevPropAuthor)
			if err != nil {
				return nil, fmt.Errorf("history: fetch author of r%d: %w", deletedRev, err)
			}
			details.DeletedRevAuthor = author
		}
	}

	return details, nil
}
