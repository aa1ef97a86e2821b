package purge

import (
	"fmt"
	"slices"
	"strings"
)

// SnapshotQuery selects snapshots. Every field is optional and set fields are
// combined with AND. A set list that is empty matches no snapshot.
//
// SnapshotQuery is a value: each With method returns a modified copy, so a
// query can be shared and extended without affecting other holders.
//
//	q := purge.NewSnapshotQuery().
//	    WithComponentUUID(project.UUID).
//	    WithIsLast(false).
//	    WithNotPurged(true)
type SnapshotQuery struct {
	snapshotUUID      *string
	analysisUUID      *string
	rootComponentUUID *string
	componentUUID     *string
	scopes            []string
	scopesSet         bool
	status            []string
	statusSet         bool
	isLast            *bool
	notPurged         *bool
	withVersionEvent  *bool
}

// NewSnapshotQuery returns a query with no filter set.
func NewSnapshotQuery() SnapshotQuery {
	return SnapshotQuery{}
}

func (q SnapshotQuery) WithSnapshotUUID(uuid string) SnapshotQuery {
	q.snapshotUUID = &uuid
	return q
}

func (q SnapshotQuery) WithAnalysisUUID(uuid string) SnapshotQuery {
	q.analysisUUID = &uuid
	return q
}

func (q SnapshotQuery) WithRootComponentUUID(uuid string) SnapshotQuery {
	q.rootComponentUUID = &uuid
	return q
}

func (q SnapshotQuery) WithComponentUUID(uuid string) SnapshotQuery {
	q.componentUUID = &uuid
	return q
}

// WithScopes restricts the query to snapshots of the given scopes.
func (q SnapshotQuery) WithScopes(scopes ...string) SnapshotQuery {
	q.scopes = slices.Clone(scopes)
	if q.scopes == nil {
		q.scopes = []string{}
	}
	q.scopesSet = true
	return q
}

// WithStatus restricts the query to snapshots having one of the given statuses.
func (q SnapshotQuery) WithStatus(status ...string) SnapshotQuery {
	q.status = slices.Clone(status)
	if q.status == nil {
		q.status = []string{}
	}
	q.statusSet = true
	return q
}

func (q SnapshotQuery) WithIsLast(isLast bool) SnapshotQuery {
	q.isLast = &isLast
	return q
}

// WithNotPurged(true) keeps only snapshots not yet marked purged;
// WithNotPurged(false) keeps only purged ones.
func (q SnapshotQuery) WithNotPurged(notPurged bool) SnapshotQuery {
	q.notPurged = &notPurged
	return q
}

// WithVersionEvent filters on the presence of a version event on the analysis.
func (q SnapshotQuery) WithVersionEvent(withVersionEvent bool) SnapshotQuery {
	q.withVersionEvent = &withVersionEvent
	return q
}

func (q SnapshotQuery) SnapshotUUID() (string, bool)      { return deref(q.snapshotUUID) }
func (q SnapshotQuery) AnalysisUUID() (string, bool)      { return deref(q.analysisUUID) }
func (q SnapshotQuery) RootComponentUUID() (string, bool) { return deref(q.rootComponentUUID) }
func (q SnapshotQuery) ComponentUUID() (string, bool)     { return deref(q.componentUUID) }
func (q SnapshotQuery) IsLast() (bool, bool)              { return deref(q.isLast) }
func (q SnapshotQuery) NotPurged() (bool, bool)           { return deref(q.notPurged) }
func (q SnapshotQuery) VersionEvent() (bool, bool)        { return deref(q.withVersionEvent) }

// Scopes returns a copy of the scope filter.
func (q SnapshotQuery) Scopes() ([]string, bool) {
	return slices.Clone(q.scopes), q.scopesSet
}

// Status returns a copy of the status filter.
func (q SnapshotQuery) Status() ([]string, bool) {
	return slices.Clone(q.status), q.statusSet
}

// IsEmpty reports whether no filter is set.
func (q SnapshotQuery) IsEmpty() bool {
	return q.snapshotUUID == nil && q.analysisUUID == nil && q.rootComponentUUID == nil &&
		q.componentUUID == nil && !q.scopesSet && !q.statusSet &&
		q.isLast == nil && q.notPurged == nil && q.withVersionEvent == nil
}

// String renders the set filters, for logs.
func (q SnapshotQuery) String() string {
	var parts []string
	add := func(name string, v any) {
		parts = append(parts, fmt.Sprintf("%s=%v", name, v))
	}
	if v, ok := q.SnapshotUUID(); ok {
		add("snapshot", v)
	}
	if v, ok := q.AnalysisUUID(); ok {
		add("analysis", v)
	}
	if v, ok := q.RootComponentUUID(); ok {
		add("root_component", v)
	}
	if v, ok := q.ComponentUUID(); ok {
		add("component", v)
	}
	if v, ok := q.Scopes(); ok {
		add("scopes", v)
	}
	if v, ok := q.Status(); ok {
		add("status", v)
	}
	if v, ok := q.IsLast(); ok {
		add("is_last", v)
	}
	if v, ok := q.NotPurged(); ok {
		add("not_purged", v)
	}
	if v, ok := q.VersionEvent(); ok {
		add("version_event", v)
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
