package types

import (
	"fmt"
	"strings"
)

// ValidationError lists every invariant the stack violates
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid stack: " + strings.Join(e.Problems, "; ")
}

// Validate checks that node names, usernames and user ids are unique and
// that every node is well formed.
func (s *Stack) Validate() error {
	var problems []string

	names := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		if (n.Internal == nil) == (n.External == nil) {
			problems = append(problems, fmt.Sprintf("node %d must be exactly one of internal or external", i))
			continue
		}
		name := n.Name()
		if name == "" {
			problems = append(problems, fmt.Sprintf("node %d has no name", i))
			continue
		}
		if names[name] {
			problems = append(problems, fmt.Sprintf("duplicate node name %q", name))
		}
		names[name] = true
	}

	usernames := make(map[string]bool, len(s.Users))
	ids := make(map[uint32]bool, len(s.Users))
	for _, u := range s.Users {
		if usernames[u.Username] {
			problems = append(problems, fmt.Sprintf("duplicate username %q", u.Username))
		}
		if ids[u.ID] {
			problems = append(problems, fmt.Sprintf("duplicate user id %d", u.ID))
		}
		usernames[u.Username] = true
		ids[u.ID] = true
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
