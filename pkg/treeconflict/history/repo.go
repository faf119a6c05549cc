// Package history infers server-side structure — deletions, additions,
// edits, and copy+delete moves, including chains of moves across revisions
// — from a repository's log, by consuming an injected RepoSession. It knows
// nothing about working copies or resolution; it only answers "what
// happened to this node in the repository."
package history

import (
	"context"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Revision is a repository revision number. It is 32-bit signed in the
// subject system's wire protocol, but Go has no narrower signed integer
// advantage here, so Revision is int64 to match the signedness and leave
// headroom for sentinel arithmetic (e.g. rev-1 at rev 0).
type Revision int64

// InvalidRevision is the sentinel "no such revision" value, mirroring the
// wire protocol's invalid-revnum constant.
const InvalidRevision Revision = -1

// Valid reports whether r is a real revision number rather than the
// InvalidRevision sentinel.
func (r Revision) Valid() bool {
	return r != InvalidRevision
}

// NodeKind enumerates the kind of a repository or working-copy node.
type NodeKind int

const (
	NodeNone NodeKind = iota
	NodeFile
	NodeDir
	NodeSymlink
	NodeUnknown
)

// String implements fmt.Stringer.
func (k NodeKind) String() string {
	switch k {
	case NodeNone:
		return "none"
	case NodeFile:
		return "file"
	case NodeDir:
		return "dir"
	case NodeSymlink:
		return "symlink"
	case NodeUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Location identifies a node at a specific peg revision.
type Location struct {
	RelPath string
	Peg     Revision
}

// ChangedPath describes a single path's change within a log entry, using
// the repository's single-character change-action codes. TextModified and
// PropsModified report the log's own record of what an 'M' or 'A' entry
// touched; a RepoSession that cannot distinguish the two should leave both
// Unknown rather than guess.
type ChangedPath struct {
	Path          string
	Action        byte // 'A' (add), 'D' (delete), 'M' (modify), 'R' (replace)
	CopyFromPath  string
	CopyFromRev   Revision
	NodeKind      NodeKind
	TextModified  TriState
	PropsModified TriState
}

// LogEntry is a single revision delivered by GetLog, newest-first when
// walking backwards (the engine's only walking direction).
type LogEntry struct {
	Revision     Revision
	Author       string
	ChangedPaths []ChangedPath
}

// LogReceiver processes one LogEntry at a time during a GetLog walk. A
// receiver may return conflicterr.Cancelled to stop the walk early once it
// has found what it needs; GetLog implementations return it like any other
// receiver error, and the walker that started the walk treats that specific
// error as a normal, non-erroring end of iteration.
type LogReceiver func(entry *LogEntry) error

// LocationSegment is one contiguous range of revisions over which a node
// occupied a fixed path, as delivered by GetLocationSegments. A segment
// with an empty Path represents a gap (the node did not exist under the
// queried identity during that range).
type LocationSegment struct {
	Path       string
	RangeStart Revision
	RangeEnd   Revision
}

// LocationSegmentReceiver processes one LocationSegment at a time.
type LocationSegmentReceiver func(segment *LocationSegment) error

// RepoSession abstracts the repository RPC calls the engine needs. It is
// injected; this package contains no network code. Implementations are not
// required to be re-entrant from within a receiver callback, and every
// method accepts a context for cooperative cancellation of the underlying
// RPC (distinct from the receiver-level Cancelled sentinel, which stops a
// walk without aborting the session).
type RepoSession interface {
	// Open connects the session to the repository at url.
	Open(ctx context.Context, url string) error
	// GetLog streams log entries for paths over [start, end] to receiver.
	GetLog(ctx context.Context, paths []string, start, end Revision, revprops []string, receiver LogReceiver) error
	// GetLocations reports, for each revision in wantedRevs, the historical
	// path that relpath@peg occupied at that revision.
	GetLocations(ctx context.Context, relpath string, peg Revision, wantedRevs []Revision) (map[Revision]string, error)
	// GetLocationSegments streams the path-occupancy history of relpath@peg
	// over [start, end] to receiver.
	GetLocationSegments(ctx context.Context, relpath string, peg, start, end Revision, receiver LocationSegmentReceiver) error
	// GetDeletedRev returns the revision in which relpath was deleted
	// between start and end, or InvalidRevision if it was not.
	GetDeletedRev(ctx context.Context, relpath string, start, end Revision) (Revision, error)
	// RevProp returns a revision property value.
	RevProp(ctx context.Context, rev Revision, name string) (string, error)
	// CheckPath reports the kind of relpath at rev.
	CheckPath(ctx context.Context, relpath string, rev Revision) (NodeKind, error)
	// GetFile streams the contents of relpath@rev to sink and returns its
	// versioned properties.
	GetFile(ctx context.Context, relpath string, rev Revision, sink io.Writer) (map[string]string, error)
	// Reparent repoints the session at a new repository root URL.
	Reparent(ctx context.Context, url string) error
	// GetLatestRevnum returns the repository's youngest revision.
	GetLatestRevnum(ctx context.Context) (Revision, error)
	// GetYoungestCommonAncestor returns the youngest common ancestor of two
	// locations, or nil if they share no common history.
	GetYoungestCommonAncestor(ctx context.Context, a, b Location) (*Location, error)
}

// RevPropAuthor is the revision-property name used to recover the author of
// a revision; it is the name most RepoSession implementations store commit
// authorship under.
const RevPropAuthor = "svn:author"

// normalizeRelpath strips a leading slash, since every relpath the engine
// compares internally is repository-relative and canonical has no leading
// slash (spec section 4.2 step 1), and folds the result to NFC. RepoSession
// and WorkingCopy implementations may source relpaths from filesystems with
// different default Unicode normalization (notably HFS+'s NFD), and a move
// or deletion match is a byte-for-byte relpath comparison, so both sides
// need the same normal form before they're compared.
func normalizeRelpath(p string) string {
	return norm.NFC.String(strings.TrimPrefix(p, "/"))
}

// joinRelpath joins a parent relpath and a basename, tolerating an empty
// parent (a root-level child).
func joinRelpath(parent, basename string) string {
	if parent == "" {
		return basename
	}
	return parent + "/" + basename
}

// underParent reports whether relpath lies at or under parent.
func underParent(relpath, parent string) bool {
	if parent == "" {
		return true
	}
	return relpath == parent || strings.HasPrefix(relpath, parent+"/")
}
