package treeconflict

import (
	"context"

	"github.com/cuidi/subversion/pkg/treeconflict/history"
)

// Re-export the detail record types from history, since they flow through
// this package's public API (Conflict.IncomingDetails, etc.) and callers
// shouldn't need to import history directly for them.
type (
	LocalMissingDetails   = history.LocalMissingDetails
	IncomingDeleteDetails = history.IncomingDeleteDetails
	IncomingAddDetails    = history.IncomingAddDetails
	IncomingEditDetails   = history.IncomingEditDetails
	EditRecord            = history.EditRecord
	RepoMove              = history.RepoMove
	TriState              = history.TriState
)

const (
	TriUnknown = history.Unknown
	TriFalse   = history.False
	TriTrue    = history.True
)

// DetailsFunc lazily materializes a conflict's incoming or local details the
// first time they're needed — for description rendering or option
// enumeration — and caches the result on the Conflict. Its concrete value
// closes over whichever RepoSession calls are required (LocateDeletion,
// LocateAdditionForReverse, etc.), so the Conflict itself stays free of
// history-walking logic.
type DetailsFunc func(ctx context.Context) (interface{}, error)
