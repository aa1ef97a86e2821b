package purge

import (
	"slices"
	"testing"
)

func TestSnapshotQuery_IsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		query SnapshotQuery
		want  bool
	}{
		{name: "new", query: NewSnapshotQuery(), want: true},
		{name: "component", query: NewSnapshotQuery().WithComponentUUID("c"), want: false},
		{name: "empty scope list is a filter", query: NewSnapshotQuery().WithScopes(), want: false},
		{name: "false is a filter", query: NewSnapshotQuery().WithIsLast(false), want: false},
		{name: "version event", query: NewSnapshotQuery().WithVersionEvent(true), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshotQuery_ValueSemantics(t *testing.T) {
	base := NewSnapshotQuery().WithComponentUUID("c1")
	derived := base.WithIsLast(false).WithComponentUUID("c2")

	if v, _ := base.ComponentUUID(); v != "c1" {
		t.Errorf("base component = %q, want c1", v)
	}
	if _, ok := base.IsLast(); ok {
		t.Error("deriving a query changed the base")
	}
	if v, _ := derived.ComponentUUID(); v != "c2" {
		t.Errorf("derived component = %q, want c2", v)
	}
}

func TestSnapshotQuery_ListsAreCopied(t *testing.T) {
	scopes := []string{ScopeDirectory, ScopeFile}
	q := NewSnapshotQuery().WithScopes(scopes...)
	scopes[0] = "XXX"

	got, ok := q.Scopes()
	if !ok || !slices.Equal(got, []string{ScopeDirectory, ScopeFile}) {
		t.Errorf("Scopes() = %v, %v", got, ok)
	}
	got[1] = "YYY"
	if again, _ := q.Scopes(); again[1] != ScopeFile {
		t.Error("Scopes() exposes internal storage")
	}
}

func TestSnapshotQuery_String(t *testing.T) {
	q := NewSnapshotQuery().
		WithRootComponentUUID("r").
		WithStatus(StatusUnprocessed).
		WithIsLast(false)

	want := "{root_component=r status=[U] is_last=false}"
	if got := q.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
