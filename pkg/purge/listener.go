package purge

import "log/slog"

// Listener is notified of the effects of a purge run so caches and search
// indexes can be invalidated. Notifications are sent inline with the run and
// must return quickly.
type Listener interface {
	// OnComponentDisabling is called once per component disabled by the run.
	OnComponentDisabling(uuid string)

	// OnIssuesRemoval is called once per run with every removed issue key.
	OnIssuesRemoval(rootUUID string, issueKeys []string)
}

// NopListener ignores every notification.
type NopListener struct{}

func (NopListener) OnComponentDisabling(string)       {}
func (NopListener) OnIssuesRemoval(string, []string) {}

// MultiListener fans notifications out to several listeners, in order.
type MultiListener []Listener

func (m MultiListener) OnComponentDisabling(uuid string) {
	for _, l := range m {
		l.OnComponentDisabling(uuid)
	}
}

func (m MultiListener) OnIssuesRemoval(rootUUID string, issueKeys []string) {
	for _, l := range m {
		l.OnIssuesRemoval(rootUUID, issueKeys)
	}
}

// LogListener logs every notification.
type LogListener struct {
	Logger *slog.Logger
}

// NewLogListener creates a listener logging through logger, or slog.Default when nil.
func NewLogListener(logger *slog.Logger) *LogListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogListener{Logger: logger.With("component", "purge.listener")}
}

func (l *LogListener) OnComponentDisabling(uuid string) {
	l.Logger.Info("component disabled", "component_uuid", uuid)
}

func (l *LogListener) OnIssuesRemoval(rootUUID string, issueKeys []string) {
	l.Logger.Info("closed issues removed", "root_uuid", rootUUID, "count", len(issueKeys))
}
