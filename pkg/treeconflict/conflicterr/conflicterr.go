// Package conflicterr defines the error catalog used across the
// tree-conflict engine: the internal log-walk cancellation sentinel and the
// two user-visible error kinds a resolution attempt can fail with.
package conflicterr

import (
	"errors"
	"fmt"
)

// Cancelled unwinds a get_log or get_location_segments walk once its
// receiver has found what it needs. It is recovered by the walker that
// produced it (history.LocateDeletion and friends) and must never reach a
// caller of this module's public API. See spec section 7's "Cancelled"
// error kind.
var Cancelled = errors.New("tree conflict: log walk cancelled")

// ResolverFailure reports that a resolver's preconditions were not
// satisfied, or that the chosen option does not apply to the conflict at
// hand. Path is relative to the working copy root, per spec section 4.8's
// failure policy ("message names local_abspath relative to the WC root").
type ResolverFailure struct {
	// Path is the conflict's working-copy path, relative to the WC root.
	Path string
	// Expectation describes the concrete precondition that was violated.
	Expectation string
}

// Error implements error.
func (e *ResolverFailure) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Expectation)
}

// NewResolverFailure constructs a ResolverFailure.
func NewResolverFailure(path, expectation string) error {
	return &ResolverFailure{Path: path, Expectation: expectation}
}

// OptionNotApplicable reports that resolve_by_id was called with an id that
// the registry did not enumerate for this conflict.
type OptionNotApplicable struct {
	ID int
}

// Error implements error.
func (e *OptionNotApplicable) Error() string {
	return fmt.Sprintf("option id %d is not applicable to this conflict", e.ID)
}

// NewOptionNotApplicable constructs an OptionNotApplicable.
func NewOptionNotApplicable(id int) error {
	return &OptionNotApplicable{ID: id}
}
