package purge

import (
	"bytes"
	"log/slog"
	"slices"
	"strings"
	"testing"
)

type recordingListener struct {
	disabled []string
	removed  [][]string
}

func (l *recordingListener) OnComponentDisabling(uuid string) {
	l.disabled = append(l.disabled, uuid)
}

func (l *recordingListener) OnIssuesRemoval(_ string, keys []string) {
	l.removed = append(l.removed, keys)
}

func TestMultiListener(t *testing.T) {
	a, b := &recordingListener{}, &recordingListener{}
	var l Listener = MultiListener{a, NopListener{}, b}

	l.OnComponentDisabling("c1")
	l.OnIssuesRemoval("root", []string{"i1", "i2"})

	for _, r := range []*recordingListener{a, b} {
		if !slices.Equal(r.disabled, []string{"c1"}) {
			t.Errorf("disabled = %v", r.disabled)
		}
		if len(r.removed) != 1 || len(r.removed[0]) != 2 {
			t.Errorf("removed = %v", r.removed)
		}
	}
}

func TestLogListener(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogListener(slog.New(slog.NewTextHandler(&buf, nil)))

	l.OnComponentDisabling("c1")
	l.OnIssuesRemoval("root", []string{"i1", "i2", "i3"})

	out := buf.String()
	for _, want := range []string{"component_uuid=c1", "root_uuid=root", "count=3", "component=purge.listener"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
