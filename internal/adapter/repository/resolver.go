package repository

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	git "github.com/go-git/go-git/v5"

	"github.com/davidmanzanoai/github-analytics/internal/domain"
)

// Resolver turns user-supplied repository references into a repository
// identity. Accepted forms:
//
//	owner/name
//	https://github.com/owner/name[.git]
//	git@github.com:owner/name.git
//	a local directory containing a clone with a GitHub "origin" remote
//
// An existing local directory wins over the owner/name reading when the
// input is ambiguous.
type Resolver struct{}

// NewResolver creates a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

var (
	ownerNamePattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9-]*)/([A-Za-z0-9._-]+)$`)
	httpsPattern     = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)
	sshPattern       = regexp.MustCompile(`^git@github\.com:([^/]+)/([^/]+?)(?:\.git)?$`)
)

// Resolve maps input to a repository identity, or an error describing why
// the input could not be understood.
func (r *Resolver) Resolve(input string) (domain.RepositoryIdentity, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return domain.RepositoryIdentity{}, fmt.Errorf("repository reference is empty")
	}

	if info, err := os.Stat(input); err == nil && info.IsDir() {
		return resolveLocalPath(input)
	}

	if m := httpsPattern.FindStringSubmatch(input); m != nil {
		return identity(m[1], m[2])
	}
	if m := sshPattern.FindStringSubmatch(input); m != nil {
		return identity(m[1], m[2])
	}
	if m := ownerNamePattern.FindStringSubmatch(input); m != nil {
		return identity(m[1], m[2])
	}

	return domain.RepositoryIdentity{}, fmt.Errorf("cannot interpret %q as a repository: expected owner/name, a GitHub URL, or a local clone path", input)
}

// resolveLocalPath opens the directory as a git repository and derives the
// identity from its "origin" remote.
func resolveLocalPath(path string) (domain.RepositoryIdentity, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return domain.RepositoryIdentity{}, fmt.Errorf("%s is not a git repository: %w", path, err)
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return domain.RepositoryIdentity{}, fmt.Errorf("%s has no origin remote: %w", path, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return domain.RepositoryIdentity{}, fmt.Errorf("%s: origin remote has no URL", path)
	}

	url := urls[0]
	if m := httpsPattern.FindStringSubmatch(url); m != nil {
		return identity(m[1], m[2])
	}
	if m := sshPattern.FindStringSubmatch(url); m != nil {
		return identity(m[1], m[2])
	}

	return domain.RepositoryIdentity{}, fmt.Errorf("origin remote %q is not a GitHub repository", url)
}

func identity(owner, name string) (domain.RepositoryIdentity, error) {
	name = strings.TrimSuffix(name, ".git")
	if owner == "" || name == "" {
		return domain.RepositoryIdentity{}, fmt.Errorf("repository reference is missing owner or name")
	}
	return domain.RepositoryIdentity{Owner: owner, Name: name}, nil
}
