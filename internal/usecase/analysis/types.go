// Package analysis turns fetched repository data into a model system prompt
// and into local reports that need no model call.
package analysis

import (
	"context"

	"github.com/davidmanzanoai/github-analytics/internal/domain"
)

// RepoInfo is the repository metadata the analyses consume.
type RepoInfo struct {
	Name          string
	FullName      string
	Description   string
	Language      string
	Stars         int
	Forks         int
	Watchers      int
	OpenIssues    int
	SizeKB        int
	DefaultBranch string
	CreatedAt     string
	UpdatedAt     string
	HTMLURL       string
	Homepage      string
}

// Contributor is one repository contributor with a contribution count.
type Contributor struct {
	Login         string
	Contributions int
}

// CommitInfo carries the commit fields the analyses use.
type CommitInfo struct {
	AuthorName string
	AuthorDate string // RFC 3339
}

// FileEntry is one file in the repository tree.
type FileEntry struct {
	Path string
	Size int64
}

// ContextData is the snapshot the context builder renders into the system
// prompt: metadata, contributors, recent commits, and the file tree.
type ContextData struct {
	Repo         RepoInfo
	Contributors []Contributor
	Commits      []CommitInfo
	Files        []FileEntry
}

// IssueInfo is one issue; entries that are pull requests are flagged because
// the GitHub issues endpoint returns both.
type IssueInfo struct {
	State         string
	IsPullRequest bool
}

// ReportData extends ContextData with the issue list and per-language byte
// counts the local report needs.
type ReportData struct {
	ContextData
	Issues    []IssueInfo
	Languages map[string]int64
}

// Fetcher retrieves repository data. Implementations make one attempt per
// underlying request; failures surface to the caller.
type Fetcher interface {
	ContextData(ctx context.Context, repo domain.RepositoryIdentity) (*ContextData, error)
	ReportData(ctx context.Context, repo domain.RepositoryIdentity) (*ReportData, error)
}

// Redactor scrubs secrets from repository-controlled text.
type Redactor interface {
	Redact(input string) string
}
