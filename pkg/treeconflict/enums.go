package treeconflict

import "github.com/cuidi/subversion/pkg/treeconflict/history"

// Operation is the user action that surfaced a conflict.
type Operation int

const (
	OperationNone Operation = iota
	OperationUpdate
	OperationSwitch
	OperationMerge
)

// String implements fmt.Stringer.
func (o Operation) String() string {
	switch o {
	case OperationNone:
		return "none"
	case OperationUpdate:
		return "update"
	case OperationSwitch:
		return "switch"
	case OperationMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// IncomingAction is what the repository side wanted to do at the victim.
type IncomingAction int

const (
	IncomingEdit IncomingAction = iota
	IncomingAdd
	IncomingDelete
	IncomingReplace
)

// String implements fmt.Stringer.
func (a IncomingAction) String() string {
	switch a {
	case IncomingEdit:
		return "edit"
	case IncomingAdd:
		return "add"
	case IncomingDelete:
		return "delete"
	case IncomingReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// LocalReason is the working-copy state that clashed with the incoming
// action.
type LocalReason int

const (
	LocalEdited LocalReason = iota
	LocalObstructed
	LocalUnversioned
	LocalDeleted
	LocalMissing
	LocalAdded
	LocalReplaced
	LocalMovedAway
	LocalMovedHere
)

// String implements fmt.Stringer.
func (r LocalReason) String() string {
	switch r {
	case LocalEdited:
		return "edited"
	case LocalObstructed:
		return "obstructed"
	case LocalUnversioned:
		return "unversioned"
	case LocalDeleted:
		return "deleted"
	case LocalMissing:
		return "missing"
	case LocalAdded:
		return "added"
	case LocalReplaced:
		return "replaced"
	case LocalMovedAway:
		return "moved_away"
	case LocalMovedHere:
		return "moved_here"
	default:
		return "unknown"
	}
}

// ConflictKind distinguishes the three kinds of conflict a descriptor may
// describe.
type ConflictKind int

const (
	ConflictKindText ConflictKind = iota
	ConflictKindProperty
	ConflictKindTree
)

// NodeKind re-exports history.NodeKind so that callers of this package
// don't need to import the history package just to name a node kind.
type NodeKind = history.NodeKind

const (
	NodeNone    = history.NodeNone
	NodeFile    = history.NodeFile
	NodeDir     = history.NodeDir
	NodeSymlink = history.NodeSymlink
	NodeUnknown = history.NodeUnknown
)
