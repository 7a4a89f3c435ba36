// Package name handles agent naming: validation, the mapping between
// agent names and container names, and random name generation.
package name

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

// ContainerPrefix is prepended to an agent name to form its container name.
const ContainerPrefix = "crowdcontrol-"

// validName matches names safe to use as directory and container names.
var validName = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// Validate checks that an agent name is usable as both a workspace
// directory and a container name suffix.
func Validate(agentName string) error {
	if agentName == "" {
		return fmt.Errorf("agent name cannot be empty")
	}
	if len(agentName) > 63 {
		return fmt.Errorf("agent name %q is too long (max 63 characters)", agentName)
	}
	if !validName.MatchString(agentName) {
		return fmt.Errorf("invalid agent name %q: use lowercase letters, digits, and hyphens", agentName)
	}
	return nil
}

// Container returns the container name for an agent.
func Container(agentName string) string {
	return ContainerPrefix + agentName
}

// Agent returns the agent name for a container name, or "" if the
// container name does not carry the crowdcontrol prefix. Docker list
// results report names with a leading slash, which is stripped first.
func Agent(containerName string) string {
	trimmed := strings.TrimPrefix(containerName, "/")
	if !strings.HasPrefix(trimmed, ContainerPrefix) {
		return ""
	}
	return strings.TrimPrefix(trimmed, ContainerPrefix)
}

var adjectives = []string{
	"bold", "brave", "bright", "calm", "clever",
	"cool", "eager", "fair", "fast", "fierce",
	"gentle", "happy", "jolly", "keen", "kind",
	"lively", "lucky", "merry", "mighty", "noble",
	"proud", "quick", "quiet", "sharp", "sleek",
	"smart", "snappy", "speedy", "steady", "swift",
	"tough", "vivid", "warm", "wild", "wise",
	"witty", "zesty", "agile", "alert", "daring",
}

var animals = []string{
	"badger", "bear", "beaver", "bison", "cheetah",
	"coyote", "crane", "crow", "deer", "dolphin",
	"eagle", "falcon", "ferret", "finch", "fox",
	"gopher", "hawk", "heron", "jaguar", "koala",
	"lemur", "lynx", "meerkat", "moose", "narwhal",
	"otter", "owl", "panda", "puma", "quail",
	"rabbit", "raven", "salmon", "seal", "sparrow",
	"swan", "tiger", "turtle", "walrus", "wombat",
}

// Generate returns a random agent name in adjective-animal format.
func Generate() string {
	adj := adjectives[rand.Intn(len(adjectives))]
	animal := animals[rand.Intn(len(animals))]
	return adj + "-" + animal
}
