package cli

import (
	"testing"
	"time"
)

func TestFormatAge(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{
			name: "zero time",
			t:    time.Time{},
			want: "-",
		},
		{
			name: "seconds ago",
			t:    now.Add(-30 * time.Second),
			want: "just now",
		},
		{
			name: "minutes ago",
			t:    now.Add(-5 * time.Minute),
			want: "5m ago",
		},
		{
			name: "hours ago",
			t:    now.Add(-3 * time.Hour),
			want: "3h ago",
		},
		{
			name: "days ago",
			t:    now.Add(-49 * time.Hour),
			want: "2d ago",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAge(tt.t); got != tt.want {
				t.Errorf("formatAge() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlural(t *testing.T) {
	if got := plural(1, "y", "ies"); got != "y" {
		t.Errorf("plural(1) = %q, want %q", got, "y")
	}
	if got := plural(3, "y", "ies"); got != "ies" {
		t.Errorf("plural(3) = %q, want %q", got, "ies")
	}
}
