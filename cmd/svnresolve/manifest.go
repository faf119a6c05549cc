package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cuidi/subversion/pkg/treeconflict"
	"github.com/cuidi/subversion/pkg/treeconflict/history"
	"github.com/cuidi/subversion/pkg/treeconflict/repofake"
	"github.com/cuidi/subversion/pkg/treeconflict/wcfake"
)

// manifest is the YAML shape svnresolve loads to stand up a scripted
// repository and working copy for demo and testing purposes. The real
// storage/RPC layers are out of scope (spec.md section 1); this manifest
// is how the CLI gives the engine something concrete to run against.
type manifest struct {
	Repository struct {
		URL       string             `yaml:"url"`
		Revisions []manifestRevision `yaml:"revisions"`
	} `yaml:"repository"`

	WorkingCopy struct {
		Root      string                       `yaml:"root"`
		Nodes     map[string]manifestNode      `yaml:"nodes"`
		Conflicts map[string][]manifestConflict `yaml:"conflicts"`
	} `yaml:"working_copy"`
}

type manifestRevision struct {
	Number       int64                 `yaml:"number"`
	Author       string                `yaml:"author"`
	ChangedPaths []manifestChangedPath `yaml:"changed_paths"`
}

type manifestChangedPath struct {
	Path         string `yaml:"path"`
	Action       string `yaml:"action"`
	CopyFromPath string `yaml:"copy_from_path"`
	CopyFromRev  int64  `yaml:"copy_from_rev"`
	NodeKind     string `yaml:"node_kind"`
}

type manifestNode struct {
	Kind string `yaml:"kind"`
}

type manifestConflict struct {
	Kind           string `yaml:"kind"`
	Operation      string `yaml:"operation"`
	Action         string `yaml:"action"`
	Reason         string `yaml:"reason"`
	VictimNodeKind string `yaml:"victim_node_kind"`
	IncomingKind   string `yaml:"incoming_kind"`
	PropName       string `yaml:"prop_name"`

	SrcLeftRelpath  string `yaml:"src_left_relpath"`
	SrcLeftRev      int64  `yaml:"src_left_rev"`
	SrcRightRelpath string `yaml:"src_right_relpath"`
	SrcRightRev     int64  `yaml:"src_right_rev"`
	ReposURL        string `yaml:"repos_url"`
}

func loadManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

func (m *manifest) buildRepo() *repofake.Session {
	revisions := make([]repofake.Revision, 0, len(m.Repository.Revisions))
	for _, r := range m.Repository.Revisions {
		rev := repofake.Revision{
			Number: history.Revision(r.Number),
			Author: r.Author,
			Files:  make(map[string]repofake.File),
		}
		for _, cp := range r.ChangedPaths {
			rev.ChangedPaths = append(rev.ChangedPaths, history.ChangedPath{
				Path:         cp.Path,
				Action:       actionByte(cp.Action),
				CopyFromPath: cp.CopyFromPath,
				CopyFromRev:  history.Revision(cp.CopyFromRev),
				NodeKind:     parseNodeKind(cp.NodeKind),
			})
		}
		revisions = append(revisions, rev)
	}
	repo := repofake.New(revisions)
	repo.URL = m.Repository.URL
	return repo
}

func (m *manifest) buildWC() *wcfake.WC {
	wc := wcfake.New(m.WorkingCopy.Root)
	for abspath, n := range m.WorkingCopy.Nodes {
		wc.Nodes[abspath] = &wcfake.Node{Kind: parseNodeKind(n.Kind)}
	}
	for abspath, descs := range m.WorkingCopy.Conflicts {
		for i := range descs {
			wc.Conflicts[abspath] = append(wc.Conflicts[abspath], toDescriptor(m, &descs[i]))
		}
	}
	return wc
}

func toDescriptor(m *manifest, d *manifestConflict) *treeconflict.ConflictDescriptor {
	desc := &treeconflict.ConflictDescriptor{
		Kind:           parseConflictKind(d.Kind),
		Operation:      parseOperation(d.Operation),
		Action:         parseIncomingAction(d.Action),
		Reason:         parseLocalReason(d.Reason),
		VictimNodeKind: parseNodeKind(d.VictimNodeKind),
		IncomingKind:   parseNodeKind(d.IncomingKind),
		PropName:       d.PropName,
	}
	if d.SrcLeftRelpath != "" {
		desc.SrcLeft = &treeconflict.VersionInfo{
			ReposURL:    d.ReposURL,
			PathInRepos: d.SrcLeftRelpath,
			PegRev:      history.Revision(d.SrcLeftRev),
		}
	}
	if d.SrcRightRelpath != "" {
		desc.SrcRight = &treeconflict.VersionInfo{
			ReposURL:    d.ReposURL,
			PathInRepos: d.SrcRightRelpath,
			PegRev:      history.Revision(d.SrcRightRev),
		}
	}
	return desc
}

func actionByte(s string) byte {
	if len(s) == 0 {
		return 'M'
	}
	return s[0]
}

func parseNodeKind(s string) treeconflict.NodeKind {
	switch s {
	case "file":
		return treeconflict.NodeFile
	case "dir":
		return treeconflict.NodeDir
	case "symlink":
		return treeconflict.NodeSymlink
	case "unknown":
		return treeconflict.NodeUnknown
	default:
		return treeconflict.NodeNone
	}
}

func parseConflictKind(s string) treeconflict.ConflictKind {
	switch s {
	case "text":
		return treeconflict.ConflictKindText
	case "property":
		return treeconflict.ConflictKindProperty
	default:
		return treeconflict.ConflictKindTree
	}
}

func parseOperation(s string) treeconflict.Operation {
	switch s {
	case "update":
		return treeconflict.OperationUpdate
	case "switch":
		return treeconflict.OperationSwitch
	case "merge":
		return treeconflict.OperationMerge
	default:
		return treeconflict.OperationNone
	}
}

func parseIncomingAction(s string) treeconflict.IncomingAction {
	switch s {
	case "add":
		return treeconflict.IncomingAdd
	case "delete":
		return treeconflict.IncomingDelete
	case "replace":
		return treeconflict.IncomingReplace
	default:
		return treeconflict.IncomingEdit
	}
}

func parseLocalReason(s string) treeconflict.LocalReason {
	switch s {
	case "obstructed":
		return treeconflict.LocalObstructed
	case "unversioned":
		return treeconflict.LocalUnversioned
	case "deleted":
		return treeconflict.LocalDeleted
	case "missing":
		return treeconflict.LocalMissing
	case "added":
		return treeconflict.LocalAdded
	case "replaced":
		return treeconflict.LocalReplaced
	case "moved_away":
		return treeconflict.LocalMovedAway
	case "moved_here":
		return treeconflict.LocalMovedHere
	default:
		return treeconflict.LocalEdited
	}
}
