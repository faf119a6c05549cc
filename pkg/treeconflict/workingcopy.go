package treeconflict

import (
	"context"
	"io"

	"github.com/cuidi/subversion/pkg/treeconflict/history"
)

// VersionInfo identifies one side of a conflict's source, as recorded by a
// legacy conflict descriptor.
type VersionInfo struct {
	ReposURL  string
	ReposUUID string
	PathInRepos string
	PegRev    history.Revision
	NodeKind  NodeKind
}

// PropConflictValues holds the four values involved in a property conflict.
type PropConflictValues struct {
	Base        string
	Working     string
	IncomingOld string
	IncomingNew string
}

// ConflictDescriptor is one legacy conflict record as read from the working
// copy. A single path may have at most one text descriptor, any number of
// property descriptors (one per propname), and at most one tree descriptor.
type ConflictDescriptor struct {
	Kind      ConflictKind
	Operation Operation
	Action    IncomingAction
	Reason    LocalReason

	VictimNodeKind NodeKind
	IncomingKind   NodeKind

	SrcLeft  *VersionInfo
	SrcRight *VersionInfo

	// Text-conflict marker files.
	BaseAbspath  string
	MyAbspath    string
	TheirAbspath string

	// Property-conflict fields; PropName is empty for non-property
	// descriptors.
	PropName   string
	PropValues PropConflictValues
}

// WorkingCopy abstracts working-copy reads, the resolve write-lock pair,
// and the mutation primitives resolvers invoke. It is injected; this
// package contains no on-disk storage logic.
type WorkingCopy interface {
	// ReadConflictDescriptors returns every legacy conflict descriptor
	// recorded at abspath.
	ReadConflictDescriptors(ctx context.Context, abspath string) ([]*ConflictDescriptor, error)

	// AcquireForResolve and Release form the write-lock pair every resolver
	// must hold while mutating the working copy.
	AcquireForResolve(ctx context.Context, abspath string) error
	Release(ctx context.Context, abspath string) error

	DeleteNode(ctx context.Context, abspath string) error
	CopyNode(ctx context.Context, src, dst string, metadataOnly bool) error
	AddReposFile(ctx context.Context, abspath string, contents io.Reader, props map[string]string, url string, peg history.Revision) error
	MergeFiles(ctx context.Context, base, their, mine string, propDiffs map[string]string) error
	ClearTreeConflict(ctx context.Context, abspath string) error
	BreakMovedAway(ctx context.Context, abspath string) error
	RaiseMovedAway(ctx context.Context, abspath string) error
	UpdateMovedAwayNode(ctx context.Context, abspath string) error

	NodeOrigin(ctx context.Context, abspath string) (isCopy bool, copyfromRev history.Revision, copyfromRelpath string, err error)
	NodeMovedAway(ctx context.Context, abspath string) (movedTo string, ok bool, err error)
	NodeMovedHere(ctx context.Context, abspath string) (movedFrom string, ok bool, err error)

	WCRoot(ctx context.Context, abspath string) (string, error)
	Tmpdir(ctx context.Context, abspath string) (string, error)
	PropList(ctx context.Context, abspath string) (map[string]string, error)

	// NodeExists reports whether abspath currently exists on disk, and with
	// what kind, without requiring it to be versioned — used by merge
	// resolvers to verify a victim is still present before mutating it.
	NodeExists(ctx context.Context, abspath string) (NodeKind, error)

	// CheckoutTo checks out url@peg into dst, delivering
	// notifications re-pathed by the caller.
	CheckoutTo(ctx context.Context, url string, peg history.Revision, dst string, notify func(Notification)) error

	// RemoveFromRevisionControl strips WC administrative metadata from
	// abspath without touching the on-disk content.
	RemoveFromRevisionControl(ctx context.Context, abspath string) error

	// RenameOnDisk performs a plain filesystem rename, bypassing
	// versioning.
	RenameOnDisk(ctx context.Context, src, dst string) error

	// Merge invokes the two-file/two-tree merge driver between left and
	// right locations, landing the result at target.
	Merge(ctx context.Context, leftURL string, leftPeg history.Revision, rightURL string, rightPeg history.Revision, target string, opts MergeOptions) error

	// ConflictedPaths returns every abspath under root that carries at
	// least one conflict descriptor, for Engine.Stats to summarize.
	ConflictedPaths(ctx context.Context, root string) ([]string, error)

	// ResolveConflict clears a text or property conflict marker at abspath
	// by recording the chosen legacy conflict_choice. propName is empty for
	// a text conflict, or names the property for a property conflict.
	ResolveConflict(ctx context.Context, abspath string, kind ConflictKind, propName string, choice ConflictChoice) error
}

// ConflictChoice is the legacy enum that text and property resolution
// primitives speak, distinct from the engine's own OptionID so that the
// two vocabularies can evolve independently.
type ConflictChoice int

const (
	ChoiceUndefined ConflictChoice = iota
	ChoicePostpone
	ChoiceBase
	ChoiceTheirsFull
	ChoiceMineFull
	ChoiceTheirsConflict
	ChoiceMineConflict
	ChoiceMerged
)

// translateChoice maps a text/property OptionID to the legacy
// conflict_choice enum the WorkingCopy primitive expects.
func translateChoice(id OptionID) ConflictChoice {
	switch id {
	case OptionPostpone:
		return ChoicePostpone
	case OptionBaseText:
		return ChoiceBase
	case OptionIncomingText:
		return ChoiceTheirsFull
	case OptionWorkingText:
		return ChoiceMineFull
	case OptionIncomingTextWhereConflicted:
		return ChoiceTheirsConflict
	case OptionWorkingTextWhereConflicted:
		return ChoiceMineConflict
	case OptionMergedText:
		return ChoiceMerged
	default:
		return ChoiceUndefined
	}
}

// MergeOptions configures a call to WorkingCopy.Merge.
type MergeOptions struct {
	Depth           MergeDepth
	IgnoreMergeinfo bool
	AllowMixedRev   bool
}

// MergeDepth mirrors the subset of depth values the engine's merge
// resolvers request.
type MergeDepth int

const (
	DepthInfinity MergeDepth = iota
	DepthEmpty
)

// Notification is emitted by resolvers and by CheckoutTo as they make
// progress, and by the engine once a resolution completes.
type Notification struct {
	Action   string
	Path     string
	Kind     NodeKind
	OptionID OptionID
}
