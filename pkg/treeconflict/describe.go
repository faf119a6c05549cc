package treeconflict

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// describeIncoming renders the incoming side of a tree conflict's
// description. It dispatches on incoming action, then operation, then on
// the shape of the details value loaded for this conflict (spec section
// 4.6, cascade steps 1-5). Unlike a real dispatch table this is a plain
// switch, exhaustive by construction; Go has no sum types to lean on here.
func describeIncoming(c *Conflict, details interface{}) string {
	switch c.IncomingChange() {
	case IncomingEdit:
		return describeIncomingEdit(c.Operation(), details)
	case IncomingAdd:
		return describeIncomingAdd(c, details)
	case IncomingDelete:
		return describeIncomingDelete(c, details)
	case IncomingReplace:
		// The original implementation routes delete and replace through
		// the same description function (conflict_type_specific_setup);
		// a replace conflict carries the same IncomingDeleteDetails shape.
		return describeIncomingDelete(c, details)
	default:
		return "incoming change"
	}
}

func describeIncomingEdit(op Operation, details interface{}) string {
	edits, _ := details.(IncomingEditDetails)
	if len(edits) == 0 {
		return "A change was made to the item."
	}
	if op != OperationMerge {
		return fmt.Sprintf("A change was made to the item in revision %d by %s.",
			edits[len(edits)-1].Revision, edits[len(edits)-1].Author)
	}
	if len(edits) == 1 {
		return fmt.Sprintf("A change was made to the item in revision %d by %s.",
			edits[0].Revision, edits[0].Author)
	}
	revs := make([]int64, len(edits))
	for i, e := range edits {
		revs[i] = int64(e.Revision)
	}
	return fmt.Sprintf("The item was changed across revisions %s.", FormatRevisionList(revs))
}

// describeIncomingAdd renders an incoming addition, varying its phrasing by
// operation (where the addition is said to have occurred) and by the
// incoming node's kind, mirroring describe_incoming_add_upon_update/
// _upon_switch/_upon_merge in the original, which each branch on
// new_node_kind and report a different "where" clause per operation.
func describeIncomingAdd(c *Conflict, details interface{}) string {
	add, ok := details.(*IncomingAddDetails)
	if !ok || add == nil {
		return "An item was added."
	}
	noun := addedNounWord(c.TreeIncomingNodeKind())
	appeared := "A new " + noun + " appeared" + whereSuffix(incomingWhereClause(c))
	switch {
	case add.AddedRev.Valid() && add.DeletedRev.Valid():
		return fmt.Sprintf("%s; it was added by %s in revision %d and later deleted by %s in revision %d.",
			appeared, add.AddedRevAuthor, add.AddedRev, add.DeletedRevAuthor, add.DeletedRev)
	case add.AddedRev.Valid():
		return fmt.Sprintf("%s; it was added by %s in revision %d.", appeared, add.AddedRevAuthor, add.AddedRev)
	default:
		return appeared + "."
	}
}

// describeIncomingDelete renders an incoming deletion or replacement,
// varying the subject clause by operation and victim kind the way
// describe_incoming_deletion_upon_update/_switch/_merge does, and branching
// on which of DeletedRev/AddedRev is populated: when only AddedRev is valid
// the operation is running in reverse, and what looks like a deletion is
// really undoing an addition (describe_incoming_reverse_addition_upon_*).
func describeIncomingDelete(c *Conflict, details interface{}) string {
	del, ok := details.(*IncomingDeleteDetails)
	if !ok || del == nil {
		return "An item was deleted."
	}

	noun := capitalize(victimNounWord(c.TreeVictimNodeKind()))
	subject := noun
	if where := victimWhereClause(c); where != "" {
		subject = fmt.Sprintf("%s %s", noun, where)
	}

	if !del.DeletedRev.Valid() && del.AddedRev.Valid() {
		return fmt.Sprintf("%s did not exist before it was added by %s in revision %d.",
			subject, del.RevAuthor, del.AddedRev)
	}

	rev, author := del.DeletedRev, del.RevAuthor
	if !rev.Valid() {
		rev, author = del.AddedRev, del.RevAuthor
	}

	var verb string
	switch del.ReplacingNodeKind {
	case NodeFile, NodeSymlink:
		verb = fmt.Sprintf("was replaced with a file by %s in revision %d", author, rev)
	case NodeDir:
		verb = fmt.Sprintf("was replaced with a directory by %s in revision %d", author, rev)
	default:
		verb = fmt.Sprintf("was deleted by %s in revision %d", author, rev)
	}
	desc := fmt.Sprintf("%s %s.", subject, verb)
	return appendMovedToChain(desc, del.Move)
}

// describeLocal renders the local side of a tree conflict's description,
// dispatched on local_reason and victim kind (spec section 4.6, cascade
// step 6). For moved_away/moved_here it consults WorkingCopy to add the
// in-WC relocation path alongside any repository-side move chain already
// captured in localDetails.
func describeLocal(ctx context.Context, c *Conflict, localDetails interface{}) string {
	kind := c.TreeVictimNodeKind()
	switch c.LocalChange() {
	case LocalEdited:
		return fmt.Sprintf("Local edits are preserved on the %s.", kindWord(kind))
	case LocalObstructed:
		return fmt.Sprintf("An unversioned %s obstructs the incoming item.", kindWord(kind))
	case LocalUnversioned:
		return fmt.Sprintf("An unversioned %s exists at this path.", kindWord(kind))
	case LocalDeleted:
		return fmt.Sprintf("The %s was deleted locally.", kindWord(kind))
	case LocalMissing:
		return fmt.Sprintf("The %s is missing from the working copy.", kindWord(kind))
	case LocalAdded:
		return fmt.Sprintf("The %s was added locally.", kindWord(kind))
	case LocalReplaced:
		return fmt.Sprintf("The %s was replaced locally.", kindWord(kind))
	case LocalMovedAway:
		sentence := fmt.Sprintf("The local %s was moved away.", kindWord(kind))
		if missing, ok := localDetails.(*LocalMissingDetails); ok && missing != nil && missing.Move != nil {
			sentence = fmt.Sprintf("The local %s was moved away to '%s'.", kindWord(kind), missing.Move.MovedToRelpath)
		}
		if c.engine != nil {
			if movedTo, ok, err := c.engine.wc.NodeMovedAway(ctx, c.LocalAbspath); err == nil && ok {
				sentence += fmt.Sprintf(" It is now at '%s' in the working copy.", movedTo)
			}
		}
		return sentence
	case LocalMovedHere:
		sentence := fmt.Sprintf("The %s was moved here locally.", kindWord(kind))
		if c.engine != nil {
			if movedFrom, ok, err := c.engine.wc.NodeMovedHere(ctx, c.LocalAbspath); err == nil && ok {
				sentence += fmt.Sprintf(" It was moved from '%s' in the working copy.", movedFrom)
			}
		}
		return sentence
	default:
		return "Local state conflicts with the incoming change."
	}
}

func kindWord(k NodeKind) string {
	switch k {
	case NodeFile:
		return "file"
	case NodeDir:
		return "directory"
	case NodeSymlink:
		return "symlink"
	default:
		return "item"
	}
}

// addedNounWord groups a new node's kind the way describe_incoming_add_*
// does: files and symlinks share phrasing, directories and everything else
// each get their own.
func addedNounWord(k NodeKind) string {
	switch k {
	case NodeDir:
		return "directory"
	case NodeFile, NodeSymlink:
		return "file"
	default:
		return "item"
	}
}

func victimNounWord(k NodeKind) string {
	return kindWord(k)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func whereSuffix(clause string) string {
	if clause == "" {
		return ""
	}
	return " " + clause
}

// incomingWhereClause describes where an incoming addition occurred,
// phrased per operation: a revision for update, a target location for
// switch and merge, mirroring the distinct "where" clauses each of
// describe_incoming_add_upon_update/_switch/_merge build.
func incomingWhereClause(c *Conflict) string {
	desc := c.treeDesc
	if desc == nil || desc.SrcRight == nil {
		return ""
	}
	switch c.Operation() {
	case OperationUpdate:
		return fmt.Sprintf("during update to r%d", desc.SrcRight.PegRev)
	case OperationSwitch:
		return fmt.Sprintf("during switch to '%s@%d'", desc.SrcRight.PathInRepos, desc.SrcRight.PegRev)
	case OperationMerge:
		return fmt.Sprintf("during merge from '%s@%d'", desc.SrcRight.PathInRepos, desc.SrcRight.PegRev)
	default:
		return ""
	}
}

// victimWhereClause describes the range the victim moved across before
// being deleted or replaced, phrased per operation, mirroring
// describe_incoming_deletion_upon_update/_switch/_merge's "updated from rX
// to rY" / "switched from ... to ..." / "merged from ... to ..." clauses.
func victimWhereClause(c *Conflict) string {
	desc := c.treeDesc
	if desc == nil || desc.SrcLeft == nil || desc.SrcRight == nil {
		return ""
	}
	switch c.Operation() {
	case OperationUpdate:
		return fmt.Sprintf("updated from r%d to r%d", desc.SrcLeft.PegRev, desc.SrcRight.PegRev)
	case OperationSwitch:
		return fmt.Sprintf("switched from '%s' to '%s'", desc.SrcLeft.PathInRepos, desc.SrcRight.PathInRepos)
	case OperationMerge:
		return fmt.Sprintf("merged from '%s@%d' to '%s@%d'",
			desc.SrcLeft.PathInRepos, desc.SrcLeft.PegRev, desc.SrcRight.PathInRepos, desc.SrcRight.PegRev)
	default:
		return ""
	}
}

// appendMovedToChain walks move.Next, appending one sentence per subsequent
// relocation. A nil move returns desc unchanged (testable property 10).
func appendMovedToChain(desc string, move *RepoMove) string {
	if move == nil {
		return desc
	}
	var b strings.Builder
	b.WriteString(desc)
	for next := move.Next(); next != nil; next = next.Next() {
		fmt.Fprintf(&b, " It was then moved to '%s' in revision %d by %s.",
			next.MovedToRelpath, next.Revision, next.Author)
	}
	return b.String()
}

// FormatRevisionList renders a revision list compactly: up to 13 entries are
// listed explicitly; beyond 13 entries (8 explicit + 5 more), the first 4
// and last 4 are shown with a placeholder "[N revisions omitted for
// brevity]" between them, N = len-8 (spec section 4.6 / testable property
// 9).
func FormatRevisionList(revs []int64) string {
	if len(revs) <= 13 {
		parts := make([]string, len(revs))
		for i, r := range revs {
			parts[i] = fmt.Sprintf("r%d", r)
		}
		return strings.Join(parts, ", ")
	}
	first := revs[:4]
	last := revs[len(revs)-4:]
	omitted := len(revs) - 8
	parts := make([]string, 0, 9)
	for _, r := range first {
		parts = append(parts, fmt.Sprintf("r%d", r))
	}
	parts = append(parts, fmt.Sprintf("[%s revisions omitted for brevity]", humanize.Comma(int64(omitted))))
	for _, r := range last {
		parts = append(parts, fmt.Sprintf("r%d", r))
	}
	return strings.Join(parts, ", ")
}
