package github

import (
	"fmt"
	"strings"
)

// Repo identifies a GitHub repository as owner/name.
type Repo struct {
	Owner string
	Name  string
}

// ParseRepo parses an "owner/name" identifier.
func ParseRepo(s string) (Repo, error) {
	ar := strings.Split(strings.TrimSpace(s), "/")
	if len(ar) != 2 || ar[0] == "" || ar[1] == "" {
		return Repo{}, fmt.Errorf("invalid repository %q, expected owner/name", s)
	}
	return Repo{Owner: ar[0], Name: ar[1]}, nil
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}
