package treeconflict

import (
	"context"
	"testing"
	"time"

	"github.com/cuidi/subversion/pkg/treeconflict/wcfake"
)

func TestEngineOpenConflictReadsDescriptors(t *testing.T) {
	wc := wcfake.New("/wc")
	wc.Conflicts["/wc/victim"] = []*ConflictDescriptor{
		{Kind: ConflictKindTree, Operation: OperationUpdate, Action: IncomingEdit, Reason: LocalMovedAway},
	}
	eng := NewEngine(nil, wc, nil)
	defer eng.Close()

	c, err := eng.OpenConflict(context.Background(), "/wc/victim")
	if err != nil {
		t.Fatalf("OpenConflict failed: %v", err)
	}
	_, _, tree := c.GetConflicted()
	if !tree {
		t.Fatal("expected the opened conflict to report a tree conflict")
	}
}

func TestEngineStatsTalliesByLocalReason(t *testing.T) {
	wc := wcfake.New("/wc")
	wc.Conflicts["/wc/a"] = []*ConflictDescriptor{
		{Kind: ConflictKindTree, Operation: OperationUpdate, Action: IncomingEdit, Reason: LocalMovedAway},
	}
	wc.Conflicts["/wc/b"] = []*ConflictDescriptor{
		{Kind: ConflictKindText, PropName: ""},
		{Kind: ConflictKindTree, Operation: OperationMerge, Action: IncomingAdd, Reason: LocalObstructed},
	}
	eng := NewEngine(nil, wc, nil)
	defer eng.Close()

	stats, err := eng.Stats(context.Background(), "/wc")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TreeConflicts != 2 {
		t.Errorf("TreeConflicts = %d, want 2", stats.TreeConflicts)
	}
	if stats.TextConflicts != 1 {
		t.Errorf("TextConflicts = %d, want 1", stats.TextConflicts)
	}
	if stats.ByLocalReason[LocalMovedAway] != 1 {
		t.Errorf("ByLocalReason[moved_away] = %d, want 1", stats.ByLocalReason[LocalMovedAway])
	}
	if stats.ByLocalReason[LocalObstructed] != 1 {
		t.Errorf("ByLocalReason[obstructed] = %d, want 1", stats.ByLocalReason[LocalObstructed])
	}
}

func TestEngineWaitForChangeUnblocksAfterResolution(t *testing.T) {
	wc := wcfake.New("/wc")
	wc.Conflicts["/wc/victim"] = []*ConflictDescriptor{
		{Kind: ConflictKindTree, Operation: OperationMerge, Action: IncomingAdd, Reason: LocalObstructed},
	}
	eng := NewEngine(nil, wc, nil)
	defer eng.Close()

	ctx := context.Background()
	start, err := eng.WaitForChange(ctx, 0)
	if err != nil {
		t.Fatalf("initial WaitForChange failed: %v", err)
	}

	c, err := eng.OpenConflict(ctx, "/wc/victim")
	if err != nil {
		t.Fatalf("OpenConflict failed: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- resolveAcceptCurrentWCStatePlain(ctx, c, &Option{ID: OptionAcceptCurrentWCState})
	}()

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	next, err := eng.WaitForChange(waitCtx, start)
	if err != nil {
		t.Fatalf("WaitForChange did not observe the resolution: %v", err)
	}
	if next <= start {
		t.Errorf("expected the change index to advance past %d, got %d", start, next)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("resolver failed: %v", err)
	}
}

func TestEngineOnNotifyDoesNotCountAsAChange(t *testing.T) {
	wc := wcfake.New("/wc")
	eng := NewEngine(nil, wc, nil)
	defer eng.Close()

	before, err := eng.WaitForChange(context.Background(), 0)
	if err != nil {
		t.Fatalf("WaitForChange failed: %v", err)
	}
	eng.OnNotify(func(Notification) {})

	waitCtx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	after, err := eng.WaitForChange(waitCtx, before)
	if err == nil {
		t.Fatalf("expected WaitForChange to time out, got index %d", after)
	}
}
