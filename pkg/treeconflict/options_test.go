package treeconflict

import "testing"

func treeConflict(op Operation, action IncomingAction, reason LocalReason, victim, incoming NodeKind) *Conflict {
	desc := &ConflictDescriptor{
		Kind:           ConflictKindTree,
		Operation:      op,
		Action:         action,
		Reason:         reason,
		VictimNodeKind: victim,
		IncomingKind:   incoming,
	}
	return newConflict(nil, "/wc/victim", []*ConflictDescriptor{desc}, nil)
}

func hasOption(opts []*Option, id OptionID) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}

func TestForTreeAlwaysOffersPostponeAndAcceptCurrentWCState(t *testing.T) {
	c := treeConflict(OperationUpdate, IncomingEdit, LocalEdited, NodeFile, NodeNone)
	var reg OptionRegistry
	opts := reg.ForTree(c)
	if !hasOption(opts, OptionPostpone) {
		t.Error("expected postpone to always be offered")
	}
	if !hasOption(opts, OptionAcceptCurrentWCState) {
		t.Error("expected accept_current_wc_state to always be offered")
	}
}

func TestForTreeOffersUpdateMoveDestinationWhenMovedAway(t *testing.T) {
	c := treeConflict(OperationUpdate, IncomingEdit, LocalMovedAway, NodeFile, NodeNone)
	var reg OptionRegistry
	opts := reg.ForTree(c)
	if !hasOption(opts, OptionUpdateMoveDestination) {
		t.Error("expected update_move_destination to be offered")
	}
}

func TestForTreeOffersUpdateAnyMovedAwayChildrenForDeletedDirUnderEdit(t *testing.T) {
	c := treeConflict(OperationSwitch, IncomingEdit, LocalDeleted, NodeDir, NodeNone)
	var reg OptionRegistry
	opts := reg.ForTree(c)
	if !hasOption(opts, OptionUpdateAnyMovedAwayChildren) {
		t.Error("expected update_any_moved_away_children to be offered")
	}
}

func TestForTreeOmitsUpdateAnyMovedAwayChildrenForFile(t *testing.T) {
	c := treeConflict(OperationSwitch, IncomingEdit, LocalDeleted, NodeFile, NodeNone)
	var reg OptionRegistry
	opts := reg.ForTree(c)
	if hasOption(opts, OptionUpdateAnyMovedAwayChildren) {
		t.Error("expected update_any_moved_away_children to be withheld for a file victim")
	}
}

func TestForTreeOffersFileMergeTrioOnObstructedMergeAdd(t *testing.T) {
	c := treeConflict(OperationMerge, IncomingAdd, LocalObstructed, NodeFile, NodeFile)
	var reg OptionRegistry
	opts := reg.ForTree(c)
	for _, id := range []OptionID{
		OptionMergeIncomingAddIgnore,
		OptionMergeIncomingAddedFileTextMerge,
		OptionMergeIncomingAddedFileReplace,
		OptionMergeIncomingAddedFileReplaceAndMerge,
	} {
		if !hasOption(opts, id) {
			t.Errorf("expected %s to be offered", id)
		}
	}
	if hasOption(opts, OptionMergeIncomingAddedDirMerge) {
		t.Error("did not expect a directory option for a file victim")
	}
}

func TestForTreeOffersDirMergeTrioOnObstructedMergeAdd(t *testing.T) {
	c := treeConflict(OperationMerge, IncomingAdd, LocalObstructed, NodeDir, NodeDir)
	var reg OptionRegistry
	opts := reg.ForTree(c)
	for _, id := range []OptionID{
		OptionMergeIncomingAddedDirMerge,
		OptionMergeIncomingAddedDirReplace,
		OptionMergeIncomingAddedDirReplaceAndMerge,
	} {
		if !hasOption(opts, id) {
			t.Errorf("expected %s to be offered", id)
		}
	}
}

func TestForTreeOffersIncomingDeleteOptionsWheneverActionIsDelete(t *testing.T) {
	c := treeConflict(OperationUpdate, IncomingDelete, LocalEdited, NodeFile, NodeNone)
	var reg OptionRegistry
	opts := reg.ForTree(c)
	if !hasOption(opts, OptionIncomingDeleteIgnore) || !hasOption(opts, OptionIncomingDeleteAccept) {
		t.Error("expected both incoming_delete options to be offered")
	}
}

func TestForTreeWithheldsMergeTrioWhenNotObstructed(t *testing.T) {
	c := treeConflict(OperationMerge, IncomingAdd, LocalEdited, NodeFile, NodeFile)
	var reg OptionRegistry
	opts := reg.ForTree(c)
	if hasOption(opts, OptionMergeIncomingAddIgnore) {
		t.Error("did not expect merge options without local obstruction")
	}
}

func TestResolveAliasIDWorkingTextWhereConflictedToMoveDestination(t *testing.T) {
	c := treeConflict(OperationUpdate, IncomingEdit, LocalMovedAway, NodeFile, NodeNone)
	if got := ResolveAliasID(c, OptionWorkingTextWhereConflicted); got != OptionUpdateMoveDestination {
		t.Errorf("got %v, want update_move_destination", got)
	}
}

func TestResolveAliasIDWorkingTextWhereConflictedToMovedAwayChildren(t *testing.T) {
	c := treeConflict(OperationUpdate, IncomingEdit, LocalReplaced, NodeDir, NodeNone)
	if got := ResolveAliasID(c, OptionWorkingTextWhereConflicted); got != OptionUpdateAnyMovedAwayChildren {
		t.Errorf("got %v, want update_any_moved_away_children", got)
	}
}

func TestResolveAliasIDWorkingTextWhereConflictedPassesThroughOtherwise(t *testing.T) {
	c := treeConflict(OperationMerge, IncomingAdd, LocalObstructed, NodeFile, NodeFile)
	if got := ResolveAliasID(c, OptionWorkingTextWhereConflicted); got != OptionWorkingTextWhereConflicted {
		t.Errorf("got %v, want the id unchanged", got)
	}
}

func TestResolveAliasIDMergedTextToAcceptCurrentWCState(t *testing.T) {
	c := treeConflict(OperationUpdate, IncomingEdit, LocalEdited, NodeFile, NodeNone)
	if got := ResolveAliasID(c, OptionMergedText); got != OptionAcceptCurrentWCState {
		t.Errorf("got %v, want accept_current_wc_state", got)
	}
}

func TestForTextTrimsNonBinarySafeOptionsForBinaryContent(t *testing.T) {
	c := newConflict(nil, "/wc/image.png", []*ConflictDescriptor{descriptor(ConflictKindText, "")}, nil)
	var reg OptionRegistry
	opts := reg.ForText(c, true)
	if hasOption(opts, OptionIncomingTextWhereConflicted) || hasOption(opts, OptionWorkingTextWhereConflicted) {
		t.Error("expected where_conflicted options to be trimmed for binary content")
	}
	if !hasOption(opts, OptionMergedText) {
		t.Error("expected merged_text to remain available for binary content")
	}
}
