package treeconflict

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cuidi/subversion/pkg/logging"
	"github.com/cuidi/subversion/pkg/state"
)

// Conflict is the per-conflict envelope: a local path, the legacy
// descriptors read for it, lazily-populated detail caches, and resolution
// state. It is created by Engine.OpenConflict and lives until the caller
// releases it; it owns any RepoMove chain referenced by its details
// exclusively (spec section 3's ownership invariant).
//
// ID gives a Conflict a stable identity independent of LocalAbspath, since
// paths can be reused across separate opens of the "same" victim (e.g. the
// victim is resolved, then a later operation flags a new conflict at the
// same path) — callers that hold onto a Conflict across such a window can
// still tell old and new apart.
type Conflict struct {
	ID            uuid.UUID
	LocalAbspath  string
	engine        *engine
	logger        *logging.Logger

	textDesc *ConflictDescriptor
	treeDesc *ConflictDescriptor
	propDesc map[string]*ConflictDescriptor

	resolutionText OptionID
	resolutionTree OptionID
	resolvedProps  map[string]OptionID

	// resolved tracks, for invariant testing and WaitForChange-style
	// callers, whether the tree conflict has been cleared since this
	// envelope was opened.
	resolved *state.Marker

	incomingDetails interface{}
	localDetails    interface{}
	detailsLoaded   bool
}

// newConflict constructs an envelope from the descriptors read for a path.
func newConflict(e *engine, abspath string, descs []*ConflictDescriptor, logger *logging.Logger) *Conflict {
	c := &Conflict{
		ID:             uuid.New(),
		LocalAbspath:   abspath,
		engine:         e,
		logger:         logger,
		propDesc:       make(map[string]*ConflictDescriptor),
		resolutionText: OptionUndefined,
		resolutionTree: OptionUndefined,
		resolvedProps:  make(map[string]OptionID),
		resolved:       &state.Marker{},
	}
	for _, d := range descs {
		switch d.Kind {
		case ConflictKindText:
			c.textDesc = d
		case ConflictKindTree:
			c.treeDesc = d
		case ConflictKindProperty:
			c.propDesc[d.PropName] = d
		}
	}
	if c.treeDesc == nil {
		c.resolved.Mark()
	}
	return c
}

// GetConflicted reports which kinds of conflict remain open on this
// envelope. tree_conflicted is false exactly when no tree conflict was
// present or one has since been resolved (spec testable property 3).
func (c *Conflict) GetConflicted() (textConflicted bool, propNames []string, treeConflicted bool) {
	textConflicted = c.textDesc != nil && c.resolutionText == OptionUndefined
	for name, desc := range c.propDesc {
		if desc != nil {
			if _, resolved := c.resolvedProps[name]; !resolved {
				propNames = append(propNames, name)
			}
		}
	}
	treeConflicted = c.treeDesc != nil && !c.resolved.Marked()
	return
}

// Operation returns the operation that flagged this conflict.
func (c *Conflict) Operation() Operation {
	if c.treeDesc != nil {
		return c.treeDesc.Operation
	}
	return OperationNone
}

// IncomingChange returns the incoming action recorded on the tree
// descriptor, if any.
func (c *Conflict) IncomingChange() IncomingAction {
	if c.treeDesc != nil {
		return c.treeDesc.Action
	}
	return IncomingEdit
}

// LocalChange returns the local reason recorded on the tree descriptor, if
// any.
func (c *Conflict) LocalChange() LocalReason {
	if c.treeDesc != nil {
		return c.treeDesc.Reason
	}
	return LocalEdited
}

// TreeVictimNodeKind returns the node kind of the tree conflict's victim.
func (c *Conflict) TreeVictimNodeKind() NodeKind {
	if c.treeDesc == nil {
		return NodeNone
	}
	return c.treeDesc.VictimNodeKind
}

// TreeIncomingNodeKind returns the node kind of the tree conflict's
// incoming side.
func (c *Conflict) TreeIncomingNodeKind() NodeKind {
	if c.treeDesc == nil {
		return NodeNone
	}
	return c.treeDesc.IncomingKind
}

// ensureDetails lazily loads and caches the incoming/local detail structs
// for this conflict's tree descriptor, if it has one. It is idempotent:
// once populated, details are read-only, matching spec section 5's
// "detail caches... written once and thereafter read-only" guarantee.
func (c *Conflict) ensureDetails(ctx context.Context) error {
	if c.detailsLoaded || c.treeDesc == nil {
		return nil
	}
	incoming, local, err := c.engine.loadDetails(ctx, c)
	if err != nil {
		return fmt.Errorf("treeconflict: load details for %s: %w", c.LocalAbspath, err)
	}
	c.incomingDetails = incoming
	c.localDetails = local
	c.detailsLoaded = true
	return nil
}

// TreeDescription returns the human-readable description of the tree
// conflict: the incoming side's description followed by the local side's.
func (c *Conflict) TreeDescription(ctx context.Context) (string, error) {
	if c.treeDesc == nil {
		return "", nil
	}
	if err := c.ensureDetails(ctx); err != nil {
		return "", err
	}
	incoming := describeIncoming(c, c.incomingDetails)
	local := describeLocal(ctx, c, c.localDetails)
	return incoming + " " + local, nil
}

// markResolved records that the tree conflict has been cleared. Resolvers
// call this after a successful WorkingCopy.ClearTreeConflict.
func (c *Conflict) markResolved(id OptionID) {
	c.resolutionTree = id
	c.resolved.Mark()
}
