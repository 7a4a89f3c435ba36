package name

import (
	"regexp"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := []string{"alice", "my-agent", "agent2", "a", "x9", "a-b-c"}
	for _, n := range valid {
		if err := Validate(n); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", n, err)
		}
	}

	invalid := []string{"", "-alice", "alice-", "Alice", "my agent", "a_b", "crowd/control"}
	for _, n := range invalid {
		if err := Validate(n); err == nil {
			t.Errorf("Validate(%q) = nil, want error", n)
		}
	}

	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}
	if err := Validate(string(long)); err == nil {
		t.Error("Validate accepted a 64-character name")
	}
}

func TestContainer(t *testing.T) {
	if got := Container("alice"); got != "crowdcontrol-alice" {
		t.Errorf("Container(alice) = %q", got)
	}
}

func TestAgent(t *testing.T) {
	cases := map[string]string{
		"crowdcontrol-alice":  "alice",
		"/crowdcontrol-alice": "alice",
		"/other-container":    "",
		"alice":               "",
	}
	for in, want := range cases {
		if got := Agent(in); got != want {
			t.Errorf("Agent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerate(t *testing.T) {
	generated := Generate()

	// Should match adjective-animal pattern and be a valid agent name
	pattern := regexp.MustCompile(`^[a-z]+-[a-z]+$`)
	if !pattern.MatchString(generated) {
		t.Errorf("Generate() = %q, want adjective-animal format", generated)
	}
	if err := Validate(generated); err != nil {
		t.Errorf("Generate() produced invalid name: %v", err)
	}
}
