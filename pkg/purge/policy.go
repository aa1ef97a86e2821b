package purge

import (
	"slices"
	"time"
)

// Policy is the retention policy of one purge run.
// Build it with NewPolicy; it is not modified afterwards.
type Policy struct {
	root                        IDUUIDPair
	scopesWithoutHistoricalData []string
	maxLiveDateOfClosedIssues   time.Time
}

// NewPolicy creates the policy of a run on root. Snapshots of the given scopes
// are not kept in history, and closed issues closed strictly before
// closedIssuesCutoff are deleted.
func NewPolicy(root IDUUIDPair, scopesWithoutHistoricalData []string, closedIssuesCutoff time.Time) Policy {
	return Policy{
		root:                        root,
		scopesWithoutHistoricalData: slices.Clone(scopesWithoutHistoricalData),
		maxLiveDateOfClosedIssues:   closedIssuesCutoff,
	}
}

// Root returns the root project of the run.
func (p Policy) Root() IDUUIDPair {
	return p.root
}

// ScopesWithoutHistoricalData returns a copy of the scopes whose snapshots are
// removed once their analysis is not the last one.
func (p Policy) ScopesWithoutHistoricalData() []string {
	return slices.Clone(p.scopesWithoutHistoricalData)
}

// MaxLiveDateOfClosedIssues returns the closed-issue cutoff.
func (p Policy) MaxLiveDateOfClosedIssues() time.Time {
	return p.maxLiveDateOfClosedIssues
}

// Validate checks the policy before any store access.
func (p Policy) Validate() error {
	if p.root.UUID == "" {
		return NewPreconditionError("purge", ErrInvalidRoot)
	}
	return nil
}
