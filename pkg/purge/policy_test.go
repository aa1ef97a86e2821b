package purge

import (
	"errors"
	"testing"
	"time"
)

func TestNewPolicy(t *testing.T) {
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	scopes := []string{ScopeFile}
	p := NewPolicy(IDUUIDPair{UUID: "root"}, scopes, cutoff)
	scopes[0] = ScopeDirectory

	if got := p.ScopesWithoutHistoricalData(); len(got) != 1 || got[0] != ScopeFile {
		t.Errorf("ScopesWithoutHistoricalData() = %v, want [FIL]", got)
	}
	p.ScopesWithoutHistoricalData()[0] = ScopeProject
	if got := p.ScopesWithoutHistoricalData(); got[0] != ScopeFile {
		t.Error("policy scopes can be modified through the accessor")
	}
	if !p.MaxLiveDateOfClosedIssues().Equal(cutoff) {
		t.Errorf("MaxLiveDateOfClosedIssues() = %v, want %v", p.MaxLiveDateOfClosedIssues(), cutoff)
	}
	if p.Root().UUID != "root" {
		t.Errorf("Root() = %+v", p.Root())
	}
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		root    IDUUIDPair
		wantErr bool
	}{
		{name: "uuid only", root: IDUUIDPair{UUID: "root"}},
		{name: "empty uuid", root: IDUUIDPair{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPolicy(tt.root, nil, time.Now()).Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !IsPrecondition(err) {
					t.Errorf("error %v is not a precondition failure", err)
				}
				if !errors.Is(err, ErrInvalidRoot) {
					t.Errorf("error %v does not wrap ErrInvalidRoot", err)
				}
			}
		})
	}
}
