package treeconflict

import (
	"context"
	"fmt"

	"github.com/cuidi/subversion/pkg/treeconflict/conflicterr"
)

// verifyLocalStateForIncomingDelete implements the shared precondition
// check for incoming_delete_ignore and incoming_delete_accept (spec
// section 4.8). For update/switch it cross-checks the local node's copy
// origin against the located deletion/addition revision; for merge it only
// requires the victim still be present with the recorded kind.
func verifyLocalStateForIncomingDelete(ctx context.Context, c *Conflict) error {
	if err := c.ensureDetails(ctx); err != nil {
		return err
	}
	details, ok := c.incomingDetails.(*IncomingDeleteDetails)
	if !ok || details == nil {
		return conflicterr.NewResolverFailure(relativeToWCRoot(ctx, c), "incoming delete details are not available")
	}

	if c.Operation() == OperationMerge {
		kind, err := c.engine.wc.NodeExists(ctx, c.LocalAbspath)
		if err != nil {
			return err
		}
		if kind != c.TreeVictimNodeKind() {
			return conflicterr.NewResolverFailure(relativeToWCRoot(ctx, c), fmt.Sprintf("victim is no longer a %s", c.TreeVictimNodeKind()))
		}
		return nil
	}

	isCopy, copyfromRev, copyfromRelpath, err := c.engine.wc.NodeOrigin(ctx, c.LocalAbspath)
	if err != nil {
		return err
	}
	if !isCopy {
		return conflicterr.NewResolverFailure(relativeToWCRoot(ctx, c), "local node is not a copy")
	}

	switch {
	case details.DeletedRev.Valid():
		if copyfromRev >= details.DeletedRev {
			return conflicterr.NewResolverFailure(relativeToWCRoot(ctx, c), "local copy postdates the incoming deletion")
		}
	case details.AddedRev.Valid():
		if copyfromRev < details.AddedRev {
			return conflicterr.NewResolverFailure(relativeToWCRoot(ctx, c), "local copy predates the incoming addition")
		}
	default:
		return conflicterr.NewResolverFailure(relativeToWCRoot(ctx, c), "neither a deleted nor an added revision is known")
	}

	wantRelpath := details.ReposRelpath
	if c.Operation() == OperationSwitch && c.treeDesc.SrcLeft != nil {
		wantRelpath = c.treeDesc.SrcLeft.PathInRepos
	}
	if copyfromRelpath != wantRelpath {
		return conflicterr.NewResolverFailure(relativeToWCRoot(ctx, c), "local copy origin does not match the incoming location")
	}
	return nil
}

func resolveIncomingDeleteIgnore(ctx context.Context, c *Conflict, opt *Option) error {
	if err := verifyLocalStateForIncomingDelete(ctx, c); err != nil {
		return err
	}
	return withWriteLock(ctx, c, opt, func(ctx context.Context) error { return nil })
}

func resolveIncomingDeleteAccept(ctx context.Context, c *Conflict, opt *Option) error {
	if err := verifyLocalStateForIncomingDelete(ctx, c); err != nil {
		return err
	}
	return withWriteLock(ctx, c, opt, func(ctx context.Context) error {
		return c.engine.wc.DeleteNode(ctx, c.LocalAbspath)
	})
}
