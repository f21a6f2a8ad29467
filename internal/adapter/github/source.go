package github

import (
	"context"

	"github.com/davidmanzanoai/github-analytics/internal/domain"
	"github.com/davidmanzanoai/github-analytics/internal/usecase/analysis"
)

// DataSource adapts the GitHub client to the analysis Fetcher port.
type DataSource struct {
	client *Client
}

// NewDataSource creates a Fetcher backed by the given client.
func NewDataSource(client *Client) *DataSource {
	return &DataSource{client: client}
}

// ContextData fetches the snapshot the context builder renders: repository
// metadata, contributors, recent commits, and the file tree.
func (d *DataSource) ContextData(ctx context.Context, repo domain.RepositoryIdentity) (*analysis.ContextData, error) {
	data := &analysis.ContextData{}
	if err := d.fill(ctx, repo, data); err != nil {
		return nil, err
	}
	return data, nil
}

// ReportData fetches everything the local report needs: the context snapshot
// plus issues and language statistics.
func (d *DataSource) ReportData(ctx context.Context, repo domain.RepositoryIdentity) (*analysis.ReportData, error) {
	data := &analysis.ReportData{}
	if err := d.fill(ctx, repo, &data.ContextData); err != nil {
		return nil, err
	}

	issues, err := d.client.ListIssues(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, err
	}
	data.Issues = make([]analysis.IssueInfo, 0, len(issues))
	for _, issue := range issues {
		data.Issues = append(data.Issues, analysis.IssueInfo{
			State:         issue.State,
			IsPullRequest: issue.IsPullRequest(),
		})
	}

	languages, err := d.client.ListLanguages(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, err
	}
	data.Languages = languages

	return data, nil
}

func (d *DataSource) fill(ctx context.Context, repo domain.RepositoryIdentity, data *analysis.ContextData) error {
	info, err := d.client.GetRepository(ctx, repo.Owner, repo.Name)
	if err != nil {
		return err
	}
	data.Repo = analysis.RepoInfo{
		Name:          info.Name,
		FullName:      info.FullName,
		Description:   info.Description,
		Language:      info.Language,
		Stars:         info.Stars,
		Forks:         info.Forks,
		Watchers:      info.Watchers,
		OpenIssues:    info.OpenIssues,
		SizeKB:        info.Size,
		DefaultBranch: info.DefaultBranch,
		CreatedAt:     info.CreatedAt,
		UpdatedAt:     info.UpdatedAt,
		HTMLURL:       info.HTMLURL,
		Homepage:      info.Homepage,
	}

	contributors, err := d.client.ListContributors(ctx, repo.Owner, repo.Name)
	if err != nil {
		return err
	}
	data.Contributors = make([]analysis.Contributor, 0, len(contributors))
	for _, c := range contributors {
		data.Contributors = append(data.Contributors, analysis.Contributor{
			Login:         c.Login,
			Contributions: c.Contributions,
		})
	}

	commits, err := d.client.ListCommits(ctx, repo.Owner, repo.Name)
	if err != nil {
		return err
	}
	data.Commits = make([]analysis.CommitInfo, 0, len(commits))
	for _, c := range commits {
		data.Commits = append(data.Commits, analysis.CommitInfo{
			AuthorName: c.Commit.Author.Name,
			AuthorDate: c.Commit.Author.Date,
		})
	}

	ref := info.DefaultBranch
	if ref == "" {
		ref = "main"
	}
	tree, err := d.client.GetTree(ctx, repo.Owner, repo.Name, ref)
	if err != nil {
		return err
	}
	for _, entry := range tree.Entries {
		if entry.Type != "blob" {
			continue
		}
		data.Files = append(data.Files, analysis.FileEntry{
			Path: entry.Path,
			Size: entry.Size,
		})
	}

	return nil
}
