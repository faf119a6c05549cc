package treeconflict

import (
	"bytes"
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/cuidi/subversion/pkg/treeconflict/conflicterr"
	"github.com/cuidi/subversion/pkg/treeconflict/history"
)

func maxRevision(a, b history.Revision) history.Revision {
	if a > b {
		return a
	}
	return b
}

// addedDetails fetches this conflict's IncomingAddDetails, failing loudly
// if they are not the shape every merge_incoming_added_* resolver expects.
func addedDetails(ctx context.Context, c *Conflict) (*IncomingAddDetails, error) {
	if err := c.ensureDetails(ctx); err != nil {
		return nil, err
	}
	details, ok := c.incomingDetails.(*IncomingAddDetails)
	if !ok || details == nil {
		return nil, conflicterr.NewResolverFailure(relativeToWCRoot(ctx, c), "incoming add details are not available")
	}
	return details, nil
}

// sourceURL builds the repository URL for a details relpath, rooted at the
// conflict's recorded right-hand repository URL.
func sourceURL(c *Conflict, relpath string) string {
	var base string
	if c.treeDesc != nil && c.treeDesc.SrcRight != nil {
		base = c.treeDesc.SrcRight.ReposURL
	} else if c.treeDesc != nil && c.treeDesc.SrcLeft != nil {
		base = c.treeDesc.SrcLeft.ReposURL
	}
	return base + "/" + relpath
}

func resolveMergeIncomingAddIgnore(ctx context.Context, c *Conflict, opt *Option) error {
	return withWriteLock(ctx, c, opt, func(ctx context.Context) error { return nil })
}

// resolveMergeIncomingAddedFileTextMerge fetches the incoming file, treats
// an empty file as the synthetic base, and merges it against the local
// obstruction, leaving both the text and every added property open for a
// three-way merge (spec section 4.8).
func resolveMergeIncomingAddedFileTextMerge(ctx context.Context, c *Conflict, opt *Option) error {
	details, err := addedDetails(ctx, c)
	if err != nil {
		return err
	}
	return withWriteLock(ctx, c, opt, func(ctx context.Context) error {
		tmpdir, err := c.engine.wc.Tmpdir(ctx, c.LocalAbspath)
		if err != nil {
			return err
		}
		incomingTmp := filepath.Join(tmpdir, filepath.Base(c.LocalAbspath)+".incoming")
		var buf bytes.Buffer
		props, err := c.engine.repo.GetFile(ctx, details.ReposRelpath, details.AddedRev, &buf)
		if err != nil {
			return err
		}
		if err := writeTmpFile(ctx, c, incomingTmp, buf.Bytes()); err != nil {
			return err
		}
		emptyBase := filepath.Join(tmpdir, filepath.Base(c.LocalAbspath)+".empty")
		if err := writeTmpFile(ctx, c, emptyBase, nil); err != nil {
			return err
		}
		return c.engine.wc.MergeFiles(ctx, emptyBase, incomingTmp, c.LocalAbspath, regularProps(props))
	})
}

// writeTmpFile writes a temporary file through WorkingCopy.AddReposFile
// (with no properties, copyfrom URL or revision), so the engine itself
// performs no direct disk I/O.
func writeTmpFile(ctx context.Context, c *Conflict, abspath string, contents []byte) error {
	return c.engine.wc.AddReposFile(ctx, abspath, bytes.NewReader(contents), nil, "", history.InvalidRevision)
}

// regularProps strips properties the subject system reserves (those
// prefixed "svn:entry:" or "svn:wc:") before handing a property set to a
// merge or add primitive.
func regularProps(props map[string]string) map[string]string {
	out := make(map[string]string, len(props))
	for k, v := range props {
		if strings.HasPrefix(k, "svn:entry:") || strings.HasPrefix(k, "svn:wc:") {
			continue
		}
		out[k] = v
	}
	return out
}

// resolveMergeIncomingAddedFileReplace deletes the current working file and
// re-adds it from the incoming repository content. The working file's
// content is not kept anywhere.
func resolveMergeIncomingAddedFileReplace(ctx context.Context, c *Conflict, opt *Option) error {
	details, err := addedDetails(ctx, c)
	if err != nil {
		return err
	}
	return withWriteLock(ctx, c, opt, func(ctx context.Context) error {
		if err := c.engine.wc.DeleteNode(ctx, c.LocalAbspath); err != nil {
			return err
		}
		var buf bytes.Buffer
		props, err := c.engine.repo.GetFile(ctx, details.ReposRelpath, details.AddedRev, &buf)
		if err != nil {
			return err
		}
		return c.engine.wc.AddReposFile(ctx, c.LocalAbspath, &buf, regularProps(props), sourceURL(c, details.ReposRelpath), details.AddedRev)
	})
}

// resolveMergeIncomingAddedFileReplaceAndMerge performs the replace, then
// additionally merges the displaced working content back in as a
// three-way merge against the freshly replaced file.
func resolveMergeIncomingAddedFileReplaceAndMerge(ctx context.Context, c *Conflict, opt *Option) error {
	details, err := addedDetails(ctx, c)
	if err != nil {
		return err
	}
	return withWriteLock(ctx, c, opt, func(ctx context.Context) error {
		workingProps, err := c.engine.wc.PropList(ctx, c.LocalAbspath)
		if err != nil {
			return err
		}
		tmpdir, err := c.engine.wc.Tmpdir(ctx, c.LocalAbspath)
		if err != nil {
			return err
		}
		workingTmp := filepath.Join(tmpdir, filepath.Base(c.LocalAbspath)+".working")
		if err := c.engine.wc.CopyNode(ctx, c.LocalAbspath, workingTmp, false); err != nil {
			return err
		}
		if err := c.engine.wc.DeleteNode(ctx, c.LocalAbspath); err != nil {
			return err
		}
		var buf bytes.Buffer
		incomingProps, err := c.engine.repo.GetFile(ctx, details.ReposRelpath, details.AddedRev, &buf)
		if err != nil {
			return err
		}
		if err := c.engine.wc.AddReposFile(ctx, c.LocalAbspath, &buf, regularProps(incomingProps), sourceURL(c, details.ReposRelpath), details.AddedRev); err != nil {
			return err
		}
		return c.engine.wc.MergeFiles(ctx, "", workingTmp, c.LocalAbspath, propDiff(incomingProps, workingProps))
	})
}

// propDiff returns the entries of b that differ from a, a cheap
// approximation of a full three-way property diff sufficient for a merge
// driver that only needs to know what changed.
func propDiff(a, b map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range b {
		if a[k] != v {
			out[k] = v
		}
	}
	return out
}

// mergeLocations builds the left/right repository locations a directory
// merge resolver spans, per spec section 4.8: forward merges go from the
// addition to the new location, reverse merges go from the deletion to the
// old location. The new location is the descriptor's right side and the old
// location its left side; when that side is absent, the right location is
// the incoming relpath at its added revision.
func mergeLocations(c *Conflict, details *IncomingAddDetails) (leftURL string, leftPeg history.Revision, rightURL string, rightPeg history.Revision) {
	leftURL, leftPeg = sourceURL(c, details.ReposRelpath), details.AddedRev
	side := c.treeDesc.SrcRight
	if details.DeletedRev.Valid() {
		leftPeg, side = details.DeletedRev, c.treeDesc.SrcLeft
	}
	if side == nil {
		return leftURL, leftPeg, leftURL, details.AddedRev
	}
	return leftURL, leftPeg, sourceURL(c, side.PathInRepos), side.PegRev
}

func resolveMergeIncomingAddedDirMerge(ctx context.Context, c *Conflict, opt *Option) error {
	details, err := addedDetails(ctx, c)
	if err != nil {
		return err
	}
	return withWriteLock(ctx, c, opt, func(ctx context.Context) error {
		leftURL, leftPeg, rightURL, rightPeg := mergeLocations(c, details)
		return c.engine.wc.Merge(ctx, leftURL, leftPeg, rightURL, rightPeg, c.LocalAbspath, MergeOptions{
			Depth:           DepthInfinity,
			IgnoreMergeinfo: true,
			AllowMixedRev:   true,
		})
	})
}

// checkoutNotifyAdapter rewrites notifications emitted for a checkout
// into a tmp path so they read as if they happened at dst.
func checkoutNotifyAdapter(e *engine, tmp, dst string) func(Notification) {
	return func(n Notification) {
		if len(n.Path) >= len(tmp) && n.Path[:len(tmp)] == tmp {
			n.Path = dst + n.Path[len(tmp):]
		}
		e.notify(n)
	}
}

func replaceWithCheckout(ctx context.Context, c *Conflict, details *IncomingAddDetails) error {
	tmpdir, err := c.engine.wc.Tmpdir(ctx, c.LocalAbspath)
	if err != nil {
		return err
	}
	tmp := filepath.Join(tmpdir, filepath.Base(c.LocalAbspath)+".checkout")
	if err := c.engine.wc.CheckoutTo(ctx, sourceURL(c, details.ReposRelpath), details.AddedRev, tmp, checkoutNotifyAdapter(c.engine, tmp, c.LocalAbspath)); err != nil {
		return err
	}
	parent := filepath.Dir(c.LocalAbspath)
	if err := c.engine.wc.AcquireForResolve(ctx, parent); err != nil {
		return err
	}
	defer c.engine.wc.Release(ctx, parent)

	if err := c.engine.wc.DeleteNode(ctx, c.LocalAbspath); err != nil {
		return err
	}
	if err := c.engine.wc.CopyNode(ctx, tmp, c.LocalAbspath, true); err != nil {
		return err
	}
	if err := c.engine.wc.AcquireForResolve(ctx, tmp); err != nil {
		return err
	}
	defer c.engine.wc.Release(ctx, tmp)
	if err := c.engine.wc.RemoveFromRevisionControl(ctx, tmp); err != nil {
		return err
	}
	return c.engine.wc.RenameOnDisk(ctx, tmp, c.LocalAbspath)
}

func resolveMergeIncomingAddedDirReplace(ctx context.Context, c *Conflict, opt *Option) error {
	details, err := addedDetails(ctx, c)
	if err != nil {
		return err
	}
	return withWriteLock(ctx, c, opt, func(ctx context.Context) error {
		return replaceWithCheckout(ctx, c, details)
	})
}

// resolveMergeIncomingAddedDirReplaceAndMerge replaces the directory, then
// locates the pre-replacement copy's own addition point and merges
// everything since into the replaced directory.
//
// TODO: this does not synthesize mergeinfo for the case where the incoming
// directory's own history contains a move; the engine reproduces that
// limitation rather than fixing it.
func resolveMergeIncomingAddedDirReplaceAndMerge(ctx context.Context, c *Conflict, opt *Option) error {
	details, err := addedDetails(ctx, c)
	if err != nil {
		return err
	}
	return withWriteLock(ctx, c, opt, func(ctx context.Context) error {
		if err := replaceWithCheckout(ctx, c, details); err != nil {
			return err
		}
		parentRelpath := path.Dir(details.ReposRelpath)
		addedRev, segRelpath, err := history.LocateAdditionSegment(ctx, c.engine.repo, details.ReposRelpath, details.AddedRev, parentRelpath)
		if err != nil {
			return err
		}
		mergeFrom := maxRevision(addedRev-1, addedRev)
		url := sourceURL(c, segRelpath)
		baseRev := details.AddedRev
		return c.engine.wc.Merge(ctx, url, mergeFrom, url, baseRev, c.LocalAbspath, MergeOptions{
			IgnoreMergeinfo: true,
			AllowMixedRev:   false,
		})
	})
}
