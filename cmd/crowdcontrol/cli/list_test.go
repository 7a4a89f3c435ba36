package cli

import (
	"testing"

	"github.com/crowdcontrol-sh/crowdcontrol/internal/agent"
)

func TestListVisible(t *testing.T) {
	tests := []struct {
		name   string
		status agent.Status
		all    bool
		filter string
		want   bool
	}{
		// Default view hides only stopped agents.
		{name: "running by default", status: agent.StatusRunning, want: true},
		{name: "created by default", status: agent.StatusCreated, want: true},
		{name: "error by default", status: agent.StatusError, want: true},
		{name: "stopped by default", status: agent.StatusStopped, want: false},

		{name: "stopped with all", status: agent.StatusStopped, all: true, want: true},

		// --status overrides both the default and --all.
		{name: "filter match", status: agent.StatusStopped, filter: "stopped", want: true},
		{name: "filter non-match", status: agent.StatusRunning, filter: "stopped", want: false},
		{name: "filter non-match with all", status: agent.StatusRunning, all: true, filter: "stopped", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := listVisible(tt.status, tt.all, tt.filter); got != tt.want {
				t.Errorf("listVisible(%q, all=%v, filter=%q) = %v, want %v",
					tt.status, tt.all, tt.filter, got, tt.want)
			}
		})
	}
}
