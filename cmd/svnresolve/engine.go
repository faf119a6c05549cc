package main

import (
	"github.com/cuidi/subversion/pkg/logging"
	"github.com/cuidi/subversion/pkg/treeconflict"
	"github.com/cuidi/subversion/pkg/treeconflict/wcfake"
)

// buildEngine loads the manifest named by --manifest and wires it into an
// Engine plus the fake working copy backing it, so commands can both drive
// the engine and print raw WC state for confirmation.
func buildEngine() (*treeconflict.Engine, *wcfake.WC, error) {
	m, err := loadManifest(rootConfiguration.manifest)
	if err != nil {
		return nil, nil, err
	}
	repo := m.buildRepo()
	wc := m.buildWC()
	logger := logging.RootLogger.Sublogger("svnresolve")
	if level, ok := logging.NameToLevel(rootConfiguration.logLevel); ok {
		logger = logger.WithLevel(level)
	}
	engine := treeconflict.NewEngine(repo, wc, logger)
	engine.OnNotify(func(n treeconflict.Notification) {
		logger.Infof("%s %s (option %s)", n.Action, n.Path, n.OptionID)
	})
	return engine, wc, nil
}
