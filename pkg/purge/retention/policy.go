package retention

import (
	"slices"
	"time"

	"mercator-hq/sweeper/pkg/config"
	"mercator-hq/sweeper/pkg/purge"
)

// PolicyFromConfig builds the policy of a run on root at now. File snapshots
// never keep history; directory snapshots join them when clean_directories is
// set, plus any scope listed in scopes_without_history. Closed issues older
// than closed_issues_max_age_days are expired.
func PolicyFromConfig(cfg *config.RetentionConfig, root purge.IDUUIDPair, now time.Time) purge.Policy {
	scopes := []string{purge.ScopeFile}
	if cfg.CleanDirectories {
		scopes = append(scopes, purge.ScopeDirectory)
	}
	for _, scope := range cfg.ScopesWithoutHistory {
		if !slices.Contains(scopes, scope) {
			scopes = append(scopes, scope)
		}
	}

	cutoff := now.AddDate(0, 0, -cfg.ClosedIssuesMaxAgeDays)
	return purge.NewPolicy(root, scopes, cutoff)
}
