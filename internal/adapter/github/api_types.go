package github

// GitHub REST API v3 types. Only the fields the analyses consume are mapped.
// See: https://docs.github.com/en/rest

// Repository is the response from GET /repos/{owner}/{repo}.
type Repository struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	Watchers    int    `json:"watchers_count"`
	OpenIssues  int    `json:"open_issues_count"`

	// Size is reported by the API in kilobytes.
	Size int `json:"size"`

	DefaultBranch string `json:"default_branch"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	HTMLURL       string `json:"html_url"`
	Homepage      string `json:"homepage"`
}

// Contributor is an element of GET /repos/{owner}/{repo}/contributors,
// ordered by contribution count descending.
type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}

// Commit is an element of GET /repos/{owner}/{repo}/commits,
// newest first.
type Commit struct {
	SHA    string       `json:"sha"`
	Commit CommitDetail `json:"commit"`
}

// CommitDetail carries the git-level commit data nested under "commit".
type CommitDetail struct {
	Author CommitAuthor `json:"author"`
}

// CommitAuthor identifies who authored a commit and when.
type CommitAuthor struct {
	Name string `json:"name"`
	Date string `json:"date"` // RFC 3339
}

// Tree is the response from GET /repos/{owner}/{repo}/git/trees/{ref}?recursive=1.
type Tree struct {
	SHA       string      `json:"sha"`
	Entries   []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// TreeEntry is a single path in the repository tree.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "blob" for files, "tree" for directories
	Size int64  `json:"size,omitempty"`
}

// Issue is an element of GET /repos/{owner}/{repo}/issues. The endpoint
// returns pull requests too; they carry a pull_request key.
type Issue struct {
	Number      int             `json:"number"`
	Title       string          `json:"title"`
	State       string          `json:"state"` // "open" or "closed"
	PullRequest *PullRequestRef `json:"pull_request,omitempty"`
}

// PullRequestRef marks an issue as actually being a pull request.
type PullRequestRef struct {
	URL string `json:"url"`
}

// IsPullRequest reports whether this issue entry represents a pull request.
func (i Issue) IsPullRequest() bool {
	return i.PullRequest != nil
}

// GitHubErrorResponse represents an error response from the GitHub API.
type GitHubErrorResponse struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
	Errors           []struct {
		Resource string `json:"resource"`
		Field    string `json:"field"`
		Code     string `json:"code"`
		Message  string `json:"message"`
	} `json:"errors,omitempty"`
}
