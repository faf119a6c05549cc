package treeconflict

// OptionRegistry enumerates the resolution options applicable to a
// conflict. It has no hidden state: each call re-derives its answer from
// the conflict's descriptor fields (spec section 4.7).
type OptionRegistry struct{}

// textOptionTemplates lists every text/property option in registration
// order, tagged with whether it survives the binary-text trim.
var textOptionTemplates = []struct {
	id          OptionID
	description string
	binarySafe  bool
}{
	{OptionPostpone, "Postpone this conflict for later resolution.", true},
	{OptionBaseText, "Accept the pre-conflict base text.", true},
	{OptionIncomingText, "Accept the incoming text.", true},
	{OptionWorkingText, "Accept the working text.", true},
	{OptionIncomingTextWhereConflicted, "Accept the incoming text in conflicted regions only.", false},
	{OptionWorkingTextWhereConflicted, "Accept the working text in conflicted regions only.", false},
	{OptionMergedText, "Accept the manually merged text.", true},
}

// ForText returns the options applicable to a text conflict. binary trims
// the set to exclude the "where_conflicted" pair, which requires line-level
// diffing that doesn't apply to binary content.
func (OptionRegistry) ForText(c *Conflict, binary bool) []*Option {
	var opts []*Option
	for _, t := range textOptionTemplates {
		if binary && !t.binarySafe {
			continue
		}
		opts = append(opts, &Option{ID: t.id, descriptionTemplate: t.description, conflict: c, resolve: resolveText})
	}
	return opts
}

// ForProp returns the options applicable to a property conflict, bound to
// propName. An empty propName means the option applies to every property
// still in conflict.
func (OptionRegistry) ForProp(c *Conflict, propName string) []*Option {
	var opts []*Option
	for _, t := range textOptionTemplates {
		opts = append(opts, &Option{
			ID:                  t.id,
			descriptionTemplate: t.description,
			conflict:            c,
			resolve:             resolveProp,
			PropName:            propName,
		})
	}
	return opts
}

// ForTree returns the options applicable to a tree conflict: postpone and
// accept_current_wc_state unconditionally, plus options conditional on
// (operation, incoming_action, local_reason, victim_kind, incoming_kind)
// per the table in spec section 4.7.
func (OptionRegistry) ForTree(c *Conflict) []*Option {
	op := c.Operation()
	action := c.IncomingChange()
	reason := c.LocalChange()
	victim := c.TreeVictimNodeKind()
	incoming := c.TreeIncomingNodeKind()

	opts := []*Option{
		{ID: OptionPostpone, descriptionTemplate: "Postpone this conflict for later resolution.", conflict: c, resolve: resolvePostpone},
		{ID: OptionAcceptCurrentWCState, descriptionTemplate: "Accept the current working copy state.", conflict: c, resolve: acceptCurrentWCStateResolver(op, action, reason)},
	}

	updateOrSwitch := op == OperationUpdate || op == OperationSwitch

	if updateOrSwitch && action == IncomingEdit && reason == LocalMovedAway {
		opts = append(opts, &Option{ID: OptionUpdateMoveDestination, descriptionTemplate: "Update the move destination to follow the incoming edit.", conflict: c, resolve: resolveUpdateMoveDestination})
	}
	if updateOrSwitch && action == IncomingEdit && (reason == LocalDeleted || reason == LocalReplaced) && victim == NodeDir {
		opts = append(opts, &Option{ID: OptionUpdateAnyMovedAwayChildren, descriptionTemplate: "Update any children that were moved away.", conflict: c, resolve: resolveUpdateAnyMovedAwayChildren})
	}
	if op == OperationMerge && action == IncomingAdd && reason == LocalObstructed {
		opts = append(opts, &Option{ID: OptionMergeIncomingAddIgnore, descriptionTemplate: "Ignore the incoming add, keep the local item.", conflict: c, resolve: resolveMergeIncomingAddIgnore})
		if victim == NodeFile && incoming == NodeFile {
			opts = append(opts,
				&Option{ID: OptionMergeIncomingAddedFileTextMerge, descriptionTemplate: "Merge the incoming file's text into the local file.", conflict: c, resolve: resolveMergeIncomingAddedFileTextMerge},
				&Option{ID: OptionMergeIncomingAddedFileReplace, descriptionTemplate: "Replace the local file with the incoming file.", conflict: c, resolve: resolveMergeIncomingAddedFileReplace},
				&Option{ID: OptionMergeIncomingAddedFileReplaceAndMerge, descriptionTemplate: "Replace the local file with the incoming file, then merge.", conflict: c, resolve: resolveMergeIncomingAddedFileReplaceAndMerge},
			)
		}
		if victim == NodeDir && incoming == NodeDir {
			opts = append(opts,
				&Option{ID: OptionMergeIncomingAddedDirMerge, descriptionTemplate: "Merge the incoming directory into the local directory.", conflict: c, resolve: resolveMergeIncomingAddedDirMerge},
				&Option{ID: OptionMergeIncomingAddedDirReplace, descriptionTemplate: "Replace the local directory with the incoming directory.", conflict: c, resolve: resolveMergeIncomingAddedDirReplace},
				&Option{ID: OptionMergeIncomingAddedDirReplaceAndMerge, descriptionTemplate: "Replace the local directory with the incoming directory, then merge.", conflict: c, resolve: resolveMergeIncomingAddedDirReplaceAndMerge},
			)
		}
	}
	if action == IncomingDelete {
		opts = append(opts,
			&Option{ID: OptionIncomingDeleteIgnore, descriptionTemplate: "Ignore the incoming delete, keep the local item.", conflict: c, resolve: resolveIncomingDeleteIgnore},
			&Option{ID: OptionIncomingDeleteAccept, descriptionTemplate: "Accept the incoming delete.", conflict: c, resolve: resolveIncomingDeleteAccept},
		)
	}
	return opts
}

// ResolveAliasID translates the two backwards-compatibility aliases
// accepted by resolve_by_id for tree conflicts into the concrete option id
// that actually applies, given the conflict's current state.
func ResolveAliasID(c *Conflict, id OptionID) OptionID {
	reason := c.LocalChange()
	action := c.IncomingChange()
	victim := c.TreeVictimNodeKind()

	switch id {
	case OptionWorkingTextWhereConflicted:
		if reason == LocalMovedAway {
			return OptionUpdateMoveDestination
		}
		if (reason == LocalDeleted || reason == LocalReplaced) && action == IncomingEdit && victim == NodeDir {
			return OptionUpdateAnyMovedAwayChildren
		}
		return id
	case OptionMergedText:
		return OptionAcceptCurrentWCState
	default:
		return id
	}
}
