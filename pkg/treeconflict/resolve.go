package treeconflict

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/cuidi/subversion/pkg/treeconflict/conflicterr"
)

// timestampCoarseness is the sleep every successful tree-conflict resolver
// observes before returning, so that a subsequent write to the same node
// lands with a working-copy timestamp distinguishable from the one the
// resolution itself just produced.
const timestampCoarseness = 1100 * time.Millisecond

// withWriteLock implements the resolver state machine common to every
// tree-conflict resolver (spec section 4.8): acquire the resolve lock,
// run fn, clear the tree conflict and mark the conflict resolved on
// success, release the lock (on a failure path, composing any release error
// with whatever fn or the clear returned), sleep for timestamp coarseness,
// and emit the resolved_tree notification.
func withWriteLock(ctx context.Context, c *Conflict, opt *Option, fn func(ctx context.Context) error) (err error) {
	wc := c.engine.wc
	if lockErr := wc.AcquireForResolve(ctx, c.LocalAbspath); lockErr != nil {
		return errors.Wrapf(lockErr, "acquire resolve lock on %s", c.LocalAbspath)
	}
	released := false
	defer func() {
		if !released {
			if relErr := wc.Release(ctx, c.LocalAbspath); relErr != nil {
				err = composeErrors(err, errors.Wrapf(relErr, "release resolve lock on %s", c.LocalAbspath))
			}
		}
	}()

	if err = fn(ctx); err != nil {
		return err
	}
	if err = wc.ClearTreeConflict(ctx, c.LocalAbspath); err != nil {
		return errors.Wrapf(err, "clear tree conflict on %s", c.LocalAbspath)
	}
	c.markResolved(opt.ID)
	released = true
	if relErr := wc.Release(ctx, c.LocalAbspath); relErr != nil {
		return errors.Wrapf(relErr, "release resolve lock on %s", c.LocalAbspath)
	}
	time.Sleep(timestampCoarseness)
	c.engine.notify(Notification{Action: "resolved_tree", Path: c.LocalAbspath, Kind: c.TreeVictimNodeKind(), OptionID: opt.ID})
	return nil
}

// composeErrors combines two errors that both occurred on the same exit
// path (e.g. a mutation error and a subsequent lock-release error), never
// silently dropping either.
func composeErrors(first, second error) error {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	default:
		return fmt.Errorf("%w (and on cleanup: %v)", first, second)
	}
}

// resolvePostpone is a no-op success: the conflict remains open (spec
// section 4.8, testable property 7).
func resolvePostpone(ctx context.Context, c *Conflict, opt *Option) error {
	return nil
}

// resolveText translates the chosen option to the legacy conflict_choice
// enum and resolves the text conflict.
func resolveText(ctx context.Context, c *Conflict, opt *Option) error {
	return withWriteLock(ctx, c, opt, func(ctx context.Context) error {
		return c.engine.wc.ResolveConflict(ctx, c.LocalAbspath, ConflictKindText, "", translateChoice(opt.ID))
	})
}

// resolveProp translates the chosen option and resolves one property, or
// every property still in conflict when opt.PropName is empty.
func resolveProp(ctx context.Context, c *Conflict, opt *Option) error {
	return withWriteLock(ctx, c, opt, func(ctx context.Context) error {
		choice := translateChoice(opt.ID)
		if opt.PropName != "" {
			if err := c.engine.wc.ResolveConflict(ctx, c.LocalAbspath, ConflictKindProperty, opt.PropName, choice); err != nil {
				return err
			}
			c.resolvedProps[opt.PropName] = opt.ID
			delete(c.propDesc, opt.PropName)
			return nil
		}
		for name := range c.propDesc {
			if err := c.engine.wc.ResolveConflict(ctx, c.LocalAbspath, ConflictKindProperty, name, choice); err != nil {
				return err
			}
			c.resolvedProps[name] = opt.ID
		}
		c.propDesc = make(map[string]*ConflictDescriptor)
		return nil
	})
}

// acceptCurrentWCStateResolver returns the resolver accept_current_wc_state
// should use for this conflict's shape: break_moved_away when the victim
// was moved away, deleted, or replaced under an incoming edit during
// update/switch, otherwise a plain tree-conflict clear.
func acceptCurrentWCStateResolver(op Operation, action IncomingAction, reason LocalReason) resolverFunc {
	updateOrSwitch := op == OperationUpdate || op == OperationSwitch
	breaksAway := updateOrSwitch && action == IncomingEdit &&
		(reason == LocalMovedAway || reason == LocalDeleted || reason == LocalReplaced)
	if breaksAway {
		return resolveBreakMovedAway
	}
	return resolveAcceptCurrentWCStatePlain
}

// resolveAcceptCurrentWCStatePlain refuses every option id but its own
// (spec section 4.8): a Conflict's ForTree only ever offers one
// accept_current_wc_state option, so a mismatch here means resolve_by_id
// was handed an id this conflict doesn't recognize under that name.
func resolveAcceptCurrentWCStatePlain(ctx context.Context, c *Conflict, opt *Option) error {
	if opt.ID != OptionAcceptCurrentWCState {
		return conflicterr.NewResolverFailure(relativeToWCRoot(ctx, c), fmt.Sprintf("accept_current_wc_state does not apply to option %s", opt.ID))
	}
	return withWriteLock(ctx, c, opt, func(ctx context.Context) error { return nil })
}

func resolveBreakMovedAway(ctx context.Context, c *Conflict, opt *Option) error {
	return withWriteLock(ctx, c, opt, func(ctx context.Context) error {
		return c.engine.wc.BreakMovedAway(ctx, c.LocalAbspath)
	})
}

func resolveUpdateMoveDestination(ctx context.Context, c *Conflict, opt *Option) error {
	return withWriteLock(ctx, c, opt, func(ctx context.Context) error {
		return c.engine.wc.UpdateMovedAwayNode(ctx, c.LocalAbspath)
	})
}

func resolveUpdateAnyMovedAwayChildren(ctx context.Context, c *Conflict, opt *Option) error {
	return withWriteLock(ctx, c, opt, func(ctx context.Context) error {
		return c.engine.wc.UpdateMovedAwayNode(ctx, c.LocalAbspath)
	})
}

// relativeToWCRoot best-efforts a WC-root-relative path for error messages;
// it falls back to the absolute path if the root can't be determined.
func relativeToWCRoot(ctx context.Context, c *Conflict) string {
	root, err := c.engine.wc.WCRoot(ctx, c.LocalAbspath)
	if err != nil || root == "" {
		return c.LocalAbspath
	}
	rel := c.LocalAbspath[len(root):]
	for len(rel) > 0 && (rel[0] == '/' || rel[0] == '\\') {
		rel = rel[1:]
	}
	if rel == "" {
		return "."
	}
	return rel
}
