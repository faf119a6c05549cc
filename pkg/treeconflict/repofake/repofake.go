// Package repofake provides an in-memory history.RepoSession, built from a
// fixed slate of log entries and revision properties, for use in engine
// tests and in the svnresolve CLI's demo mode. It does no I/O.
package repofake

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cuidi/subversion/pkg/treeconflict/history"
)

// Revision is one commit in a Session's fixed history.
type Revision struct {
	Number       history.Revision
	Author       string
	ChangedPaths []history.ChangedPath
	// Files maps a relpath, as it existed as of this revision, to its
	// content and properties, for GetFile/CheckPath to answer from.
	Files map[string]File
}

// File is the content and properties of a versioned file at some revision.
type File struct {
	Contents []byte
	Props    map[string]string
	Kind     history.NodeKind
}

// Session is a scripted, in-memory history.RepoSession.
type Session struct {
	URL        string
	Revisions  []Revision
	DeletedRevs map[string]history.Revision
}

// New creates a Session over the given revisions, which must be supplied in
// ascending revision order.
func New(revisions []Revision) *Session {
	return &Session{Revisions: revisions, DeletedRevs: make(map[string]history.Revision)}
}

func (s *Session) Open(ctx context.Context, url string) error {
	s.URL = url
	return nil
}

func (s *Session) Reparent(ctx context.Context, url string) error {
	s.URL = url
	return nil
}

// GetLog streams revisions in [start, end] (both ends inclusive), newest-first if start > end,
// oldest-first otherwise, matching the direction the caller requested.
func (s *Session) GetLog(ctx context.Context, paths []string, start, end history.Revision, revprops []string, receiver history.LogReceiver) error {
	indices := make([]int, len(s.Revisions))
	for i := range s.Revisions {
		indices[i] = i
	}
	descending := start > end
	lo, hi := start, end
	if descending {
		lo, hi = end, start
	}
	if descending {
		sort.Sort(sort.Reverse(sort.IntSlice(indices)))
	}
	for _, i := range indices {
		rev := s.Revisions[i]
		if rev.Number < lo || rev.Number > hi {
			continue
		}
		entry := &history.LogEntry{Revision: rev.Number, Author: rev.Author, ChangedPaths: rev.ChangedPaths}
		if err := receiver(entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) revisionAt(n history.Revision) (*Revision, bool) {
	for i := range s.Revisions {
		if s.Revisions[i].Number == n {
			return &s.Revisions[i], true
		}
	}
	return nil, false
}

// GetLocations answers, for each wanted revision, the path that relpath@peg
// occupied historically, by walking copy-from links backwards through the
// scripted changed-paths list. Leading slashes are ignored, so changed paths
// may be scripted in log form ("/trunk/a.txt"); answers carry none.
func (s *Session) GetLocations(ctx context.Context, relpath string, peg history.Revision, wantedRevs []history.Revision) (map[history.Revision]string, error) {
	out := make(map[history.Revision]string)
	for _, want := range wantedRevs {
		path := strings.TrimPrefix(relpath, "/")
		cur := peg
		for cur > want {
			rev, ok := s.revisionAt(cur)
			if !ok {
				break
			}
			var movedFrom string
			for _, cp := range rev.ChangedPaths {
				if strings.TrimPrefix(cp.Path, "/") == path && cp.CopyFromPath != "" {
					movedFrom = strings.TrimPrefix(cp.CopyFromPath, "/")
					cur = cp.CopyFromRev
					break
				}
			}
			if movedFrom == "" {
				break
			}
			path = movedFrom
		}
		if cur == want {
			out[want] = path
		}
	}
	return out, nil
}

// GetLocationSegments streams the scripted occupancy of relpath as a single
// segment spanning [start, end]. Copy boundaries within the range are not
// looked at, so the segment is never split.
func (s *Session) GetLocationSegments(ctx context.Context, relpath string, peg, start, end history.Revision, receiver history.LocationSegmentReceiver) error {
	return receiver(&history.LocationSegment{Path: relpath, RangeStart: start, RangeEnd: end})
}

func (s *Session) GetDeletedRev(ctx context.Context, relpath string, start, end history.Revision) (history.Revision, error) {
	if rev, ok := s.DeletedRevs[relpath]; ok && rev >= start && rev <= end {
		return rev, nil
	}
	return history.InvalidRevision, nil
}

func (s *Session) RevProp(ctx context.Context, rev history.Revision, name string) (string, error) {
	r, ok := s.revisionAt(rev)
	if !ok {
		return "", fmt.Errorf("repofake: no such revision r%d", rev)
	}
	if name == history.RevPropAuthor {
		return r.Author, nil
	}
	return "", nil
}

func (s *Session) CheckPath(ctx context.Context, relpath string, rev history.Revision) (history.NodeKind, error) {
	r, ok := s.revisionAt(rev)
	if !ok {
		return history.NodeNone, nil
	}
	if f, ok := r.Files[relpath]; ok {
		return f.Kind, nil
	}
	return history.NodeNone, nil
}

func (s *Session) GetFile(ctx context.Context, relpath string, rev history.Revision, sink io.Writer) (map[string]string, error) {
	r, ok := s.revisionAt(rev)
	if !ok {
		return nil, fmt.Errorf("repofake: no such revision r%d", rev)
	}
	f, ok := r.Files[relpath]
	if !ok {
		return nil, fmt.Errorf("repofake: no such file %s@%d", relpath, rev)
	}
	if _, err := sink.Write(f.Contents); err != nil {
		return nil, err
	}
	return f.Props, nil
}

func (s *Session) GetLatestRevnum(ctx context.Context) (history.Revision, error) {
	if len(s.Revisions) == 0 {
		return 0, nil
	}
	max := s.Revisions[0].Number
	for _, r := range s.Revisions {
		if r.Number > max {
			max = r.Number
		}
	}
	return max, nil
}

func (s *Session) GetYoungestCommonAncestor(ctx context.Context, a, b history.Location) (*history.Location, error) {
	// The fake treats any two locations sharing a relpath as having common
	// ancestry at the earlier of the two pegs; tests that need otherwise
	// construct a Session with disjoint relpaths instead.
	if a.RelPath == b.RelPath {
		peg := a.Peg
		if b.Peg < peg {
			peg = b.Peg
		}
		return &history.Location{RelPath: a.RelPath, Peg: peg}, nil
	}
	return nil, nil
}

var _ history.RepoSession = (*Session)(nil)
