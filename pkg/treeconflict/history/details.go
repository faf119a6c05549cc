package history

// LocalMissingDetails describes a local side that is "missing" during a
// merge: the node disappeared from the working copy outside the engine's
// own bookkeeping, and the engine had to go ask the repository why.
type LocalMissingDetails struct {
	DeletedRev       Revision
	DeletedRevAuthor string
	Move             *RepoMove
}

// IncomingDeleteDetails describes an incoming deletion. Exactly one of
// DeletedRev or AddedRev is valid: AddedRev is populated when the operation
// is applying an addition in reverse (a reverse-merge, or a backwards
// update/switch), in which case "incoming delete" really means "undoing an
// addition", and the other field holds InvalidRevision.
type IncomingDeleteDetails struct {
	DeletedRev        Revision
	AddedRev          Revision
	ReposRelpath      string
	RevAuthor         string
	ReplacingNodeKind NodeKind
	Move              *RepoMove
}

// IncomingAddDetails describes an incoming addition. For update/switch,
// both AddedRev and DeletedRev may be valid at once: the node was added,
// and later deleted, both upstream of the working copy's current position.
type IncomingAddDetails struct {
	AddedRev         Revision
	DeletedRev       Revision
	ReposRelpath     string
	AddedRevAuthor   string
	DeletedRevAuthor string
	Move             *RepoMove
}

// TriState represents a yes/no/unknown fact about a revision's effect on a
// node, used where the log alone cannot always distinguish "no" from
// "we didn't check".
type TriState int

const (
	Unknown TriState = iota
	False
	True
)

// EditRecord describes one revision that modified a node, as part of an
// ordered IncomingEditDetails list.
type EditRecord struct {
	Revision        Revision
	Author          string
	TextModified    TriState
	PropsModified   TriState
	ChildrenModified TriState
	ReposRelpath    string
}

// IncomingEditDetails is the ordered (ascending revision) list of revisions
// that modified a node over some range.
type IncomingEditDetails []EditRecord
