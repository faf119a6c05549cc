package treeconflict

import "context"

// OptionID is the stable, order-independent identifier of a resolution
// option, exposed to callers across process and language boundaries (spec
// section 6).
type OptionID int

const (
	OptionUndefined OptionID = iota
	OptionUnspecified
	OptionPostpone
	OptionBaseText
	OptionIncomingText
	OptionWorkingText
	OptionIncomingTextWhereConflicted
	OptionWorkingTextWhereConflicted
	OptionMergedText
	OptionAcceptCurrentWCState
	OptionUpdateMoveDestination
	OptionUpdateAnyMovedAwayChildren
	OptionMergeIncomingAddIgnore
	OptionMergeIncomingAddedFileTextMerge
	OptionMergeIncomingAddedFileReplace
	OptionMergeIncomingAddedFileReplaceAndMerge
	OptionMergeIncomingAddedDirMerge
	OptionMergeIncomingAddedDirReplace
	OptionMergeIncomingAddedDirReplaceAndMerge
	OptionIncomingDeleteIgnore
	OptionIncomingDeleteAccept
)

// String implements fmt.Stringer, returning the name used in the option
// catalog and in CLI output.
func (id OptionID) String() string {
	switch id {
	case OptionUndefined:
		return "undefined"
	case OptionUnspecified:
		return "unspecified"
	case OptionPostpone:
		return "postpone"
	case OptionBaseText:
		return "base_text"
	case OptionIncomingText:
		return "incoming_text"
	case OptionWorkingText:
		return "working_text"
	case OptionIncomingTextWhereConflicted:
		return "incoming_text_where_conflicted"
	case OptionWorkingTextWhereConflicted:
		return "working_text_where_conflicted"
	case OptionMergedText:
		return "merged_text"
	case OptionAcceptCurrentWCState:
		return "accept_current_wc_state"
	case OptionUpdateMoveDestination:
		return "update_move_destination"
	case OptionUpdateAnyMovedAwayChildren:
		return "update_any_moved_away_children"
	case OptionMergeIncomingAddIgnore:
		return "merge_incoming_add_ignore"
	case OptionMergeIncomingAddedFileTextMerge:
		return "merge_incoming_added_file_text_merge"
	case OptionMergeIncomingAddedFileReplace:
		return "merge_incoming_added_file_replace"
	case OptionMergeIncomingAddedFileReplaceAndMerge:
		return "merge_incoming_added_file_replace_and_merge"
	case OptionMergeIncomingAddedDirMerge:
		return "merge_incoming_added_dir_merge"
	case OptionMergeIncomingAddedDirReplace:
		return "merge_incoming_added_dir_replace"
	case OptionMergeIncomingAddedDirReplaceAndMerge:
		return "merge_incoming_added_dir_replace_and_merge"
	case OptionIncomingDeleteIgnore:
		return "incoming_delete_ignore"
	case OptionIncomingDeleteAccept:
		return "incoming_delete_accept"
	default:
		return "unknown"
	}
}

// resolverFunc is the signature every resolver implements. ctx governs the
// underlying WorkingCopy/RepoSession calls; the resolver is responsible for
// its own locking and notification.
type resolverFunc func(ctx context.Context, c *Conflict, opt *Option) error

// Option is a single resolution alternative offered for a conflict. Options
// are built on demand by the OptionRegistry and are cheap values; they hold
// a back-reference to the conflict they apply to and the property name they
// are scoped to, when relevant.
type Option struct {
	ID                 OptionID
	descriptionTemplate string
	conflict           *Conflict
	resolve            resolverFunc

	// PropName and MergedValue are populated only for property-conflict
	// options; an empty PropName means "applies to every property still in
	// conflict."
	PropName    string
	MergedValue string
}

// Description returns the option's human-readable description.
func (o *Option) Description() string {
	return o.descriptionTemplate
}

// ShortLabel returns a compact label for the option, separate from its
// longer description, matching the original's separation between a label
// and description for resolution options (SPEC_FULL.md supplemented
// feature 1).
func (o *Option) ShortLabel() string {
	return o.ID.String()
}

// Resolve invokes the option's resolver against its bound conflict.
func (o *Option) Resolve(ctx context.Context) error {
	return o.resolve(ctx, o.conflict, o)
}

// WouldSucceed probes this option's preconditions without mutating
// anything, for a caller (the CLI's options listing) that wants to
// annotate which offered options currently look resolvable (SPEC_FULL.md
// supplemented feature 4). Options with no standalone precondition check
// report true; a failing probe returns the reason as an error for display,
// not as a resolution failure.
func (o *Option) WouldSucceed(ctx context.Context) (bool, error) {
	switch o.ID {
	case OptionIncomingDeleteIgnore, OptionIncomingDeleteAccept:
		if err := verifyLocalStateForIncomingDelete(ctx, o.conflict); err != nil {
			return false, err
		}
	case OptionAcceptCurrentWCState:
		if err := o.conflict.ensureDetails(ctx); err != nil {
			return false, err
		}
	}
	return true, nil
}
