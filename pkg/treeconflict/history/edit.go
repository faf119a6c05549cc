package history

import (
	"context"
	"fmt"
)

// LocateEdits collects the list of revisions that modified relpath over the
// range between revA and revB (in whichever order they're given), following
// the node backwards through every copy it encounters: each time a
// changed entry carries a CopyFromPath, subsequent (older) log entries are
// matched against that copyfrom path instead of the original relpath, so
// history can be traced across a rename or branch copy.
func LocateEdits(ctx context.Context, session RepoSession, relpath string, kind NodeKind, revA, revB Revision) (IncomingEditDetails, error) {
	lo, hi := revA, revB
	if lo > hi {
		lo, hi = hi, lo
	}

	var records IncomingEditDetails
	active := normalizeRelpath(relpath)

	walkErr := session.GetLog(ctx, []string{relpath}, hi, lo, []string{RevPropAuthor}, func(entry *LogEntry) error {
		var matched *ChangedPath
		childrenModified := False

		for i := range entry.ChangedPaths {
			cp := &entry.ChangedPaths[i]
			path := normalizeRelpath(cp.Path)
			if path == active {
				matched = cp
				continue
			}
			if kind == NodeDir && underParent(path, active) && path != active {
				childrenModified = True
			}
		}

		if matched == nil {
			return nil
		}
		if matched.Action != 'M' && matched.Action != 'A' {
			return nil
		}

		record := EditRecord{
			Revision:         entry.Revision,
			Author:           entry.Author,
			TextModified:     matched.TextModified,
			PropsModified:    matched.PropsModified,
			ChildrenModified: Unknown,
			ReposRelpath:     active,
		}
		if kind == NodeDir {
			record.ChildrenModified = childrenModified
		}
		records = append(records, record)

		// Allow history to traverse a copy: subsequent (older) entries are
		// matched against the copyfrom path instead.
		if matched.CopyFromPath != "" {
			active = normalizeRelpath(matched.CopyFromPath)
		}

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("history: locate edits for %s: %w", relpath, walkErr)
	}

	// Entries arrived newest-first; the contract requires ascending order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	return records, nil
}
