package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/davidmanzanoai/github-analytics/internal/domain"
)

// Report is the local analytics aggregate computed from fetched repository
// data without any model call.
type Report struct {
	Repository  string    `json:"repository"`
	GeneratedAt time.Time `json:"generatedAt"`

	TopContributor *TopContributor `json:"topContributor,omitempty"`
	Velocity       *Velocity       `json:"velocity,omitempty"`
	Directories    []DirectoryStat `json:"directories,omitempty"`
	Documentation  Documentation   `json:"documentation"`
	Summary        Summary         `json:"summary"`
}

// MostComplex returns the directory with the most files, or nil when the
// tree was empty.
func (r *Report) MostComplex() *DirectoryStat {
	if len(r.Directories) == 0 {
		return nil
	}
	return &r.Directories[0]
}

// TopContributor describes the largest contributor and their share of all
// recorded contributions.
type TopContributor struct {
	Login             string  `json:"login"`
	Contributions     int     `json:"contributions"`
	Percent           float64 `json:"percent"`
	TotalContributors int     `json:"totalContributors"`
}

// Velocity summarizes development pace over the fetched commit window.
type Velocity struct {
	Commits        int       `json:"commits"`
	FirstCommit    time.Time `json:"firstCommit"`
	LastCommit     time.Time `json:"lastCommit"`
	SpanDays       int       `json:"spanDays"`
	CommitsPerDay  float64   `json:"commitsPerDay"`
	CommitsPerWeek float64   `json:"commitsPerWeek"`
	ActiveAuthors  int       `json:"activeAuthors"`
}

// DirectoryStat aggregates the files under one top-level directory. File
// count is the complexity proxy; the report orders directories by it.
type DirectoryStat struct {
	Name       string           `json:"name"`
	Files      int              `json:"files"`
	TotalBytes int64            `json:"totalBytes"`
	Extensions []ExtensionCount `json:"extensions,omitempty"`
}

// ExtensionCount is one row of a per-directory extension histogram.
type ExtensionCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Documentation categorizes the documentation files found in the tree and
// scores the repository out of 6.
type Documentation struct {
	Readme        []string `json:"readme,omitempty"`
	Contributing  []string `json:"contributing,omitempty"`
	License       []string `json:"license,omitempty"`
	Changelog     []string `json:"changelog,omitempty"`
	TechnicalDocs []string `json:"technicalDocs,omitempty"`
	Other         []string `json:"other,omitempty"`
	Score         int      `json:"score"`
	MaxScore      int      `json:"maxScore"`
}

// LanguageShare is one language's share of the repository by bytes.
type LanguageShare struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// Summary is the executive overview of the repository.
type Summary struct {
	FullName        string          `json:"fullName"`
	Description     string          `json:"description,omitempty"`
	Stars           int             `json:"stars"`
	Forks           int             `json:"forks"`
	Watchers        int             `json:"watchers"`
	OpenIssues      int             `json:"openIssues"`
	SizeMB          float64         `json:"sizeMB"`
	Contributors    int             `json:"contributors"`
	TopContributors []string        `json:"topContributors,omitempty"`
	Languages       []LanguageShare `json:"languages,omitempty"`
	CreatedAt       string          `json:"createdAt,omitempty"`
	UpdatedAt       string          `json:"updatedAt,omitempty"`
	HTMLURL         string          `json:"htmlURL,omitempty"`
	Homepage        string          `json:"homepage,omitempty"`
}

// Analyzer computes local reports from fetched repository data.
type Analyzer struct {
	fetcher  Fetcher
	redactor Redactor
	now      func() time.Time
}

// NewAnalyzer constructs an analyzer. redactor may be nil.
func NewAnalyzer(fetcher Fetcher, redactor Redactor) *Analyzer {
	return &Analyzer{
		fetcher:  fetcher,
		redactor: redactor,
		now:      time.Now,
	}
}

// SetClock overrides the report timestamp source, for tests.
func (a *Analyzer) SetClock(now func() time.Time) {
	a.now = now
}

// Report fetches the repository data and computes the full report.
func (a *Analyzer) Report(ctx context.Context, repo domain.RepositoryIdentity) (*Report, error) {
	data, err := a.fetcher.ReportData(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("fetch report data for %s: %w", repo.FullName(), err)
	}

	report := &Report{
		Repository:     repo.FullName(),
		GeneratedAt:    a.now().UTC(),
		TopContributor: topContributorStats(data.Contributors),
		Velocity:       velocityStats(data.Commits),
		Directories:    directoryStats(data.Files, 10),
		Documentation:  documentationReview(data.Files),
		Summary:        a.summary(data),
	}
	return report, nil
}

func topContributorStats(contributors []Contributor) *TopContributor {
	if len(contributors) == 0 {
		return nil
	}

	total := 0
	for _, c := range contributors {
		total += c.Contributions
	}

	top := contributors[0]
	percent := 0.0
	if total > 0 {
		percent = float64(top.Contributions) / float64(total) * 100
	}

	return &TopContributor{
		Login:             top.Login,
		Contributions:     top.Contributions,
		Percent:           percent,
		TotalContributors: len(contributors),
	}
}

func velocityStats(commits []CommitInfo) *Velocity {
	var dates []time.Time
	authors := make(map[string]struct{})
	for _, commit := range commits {
		parsed, err := time.Parse(time.RFC3339, commit.AuthorDate)
		if err != nil {
			continue
		}
		dates = append(dates, parsed)
		if commit.AuthorName != "" {
			authors[commit.AuthorName] = struct{}{}
		}
	}
	if len(dates) == 0 {
		return nil
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	first := dates[0]
	last := dates[len(dates)-1]
	spanDays := int(last.Sub(first).Hours() / 24)

	v := &Velocity{
		Commits:       len(commits),
		FirstCommit:   first,
		LastCommit:    last,
		SpanDays:      spanDays,
		ActiveAuthors: len(authors),
	}
	if spanDays > 0 {
		v.CommitsPerDay = float64(len(commits)) / float64(spanDays)
		v.CommitsPerWeek = v.CommitsPerDay * 7
	}
	return v
}

func directoryStats(files []FileEntry, limit int) []DirectoryStat {
	type dirAccum struct {
		files      int
		totalBytes int64
		extensions map[string]int
	}

	byDir := make(map[string]*dirAccum)
	for _, file := range files {
		dir := "(root)"
		if idx := strings.Index(file.Path, "/"); idx >= 0 {
			dir = file.Path[:idx]
		}

		accum, ok := byDir[dir]
		if !ok {
			accum = &dirAccum{extensions: make(map[string]int)}
			byDir[dir] = accum
		}
		accum.files++
		accum.totalBytes += file.Size
		accum.extensions[fileExtension(file.Path)]++
	}

	stats := make([]DirectoryStat, 0, len(byDir))
	for name, accum := range byDir {
		extensions := make([]ExtensionCount, 0, len(accum.extensions))
		for ext, count := range accum.extensions {
			extensions = append(extensions, ExtensionCount{Name: ext, Count: count})
		}
		sort.Slice(extensions, func(i, j int) bool {
			if extensions[i].Count != extensions[j].Count {
				return extensions[i].Count > extensions[j].Count
			}
			return extensions[i].Name < extensions[j].Name
		})
		if len(extensions) > 5 {
			extensions = extensions[:5]
		}

		stats = append(stats, DirectoryStat{
			Name:       name,
			Files:      accum.files,
			TotalBytes: accum.totalBytes,
			Extensions: extensions,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Files != stats[j].Files {
			return stats[i].Files > stats[j].Files
		}
		return stats[i].Name < stats[j].Name
	})

	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

func documentationReview(files []FileEntry) Documentation {
	doc := Documentation{MaxScore: 6}

	for _, file := range files {
		lower := strings.ToLower(file.Path)
		switch {
		case strings.Contains(lower, "readme"):
			doc.Readme = append(doc.Readme, file.Path)
		case strings.Contains(lower, "contributing") || strings.Contains(lower, "contribute"):
			doc.Contributing = append(doc.Contributing, file.Path)
		case strings.Contains(lower, "license"):
			doc.License = append(doc.License, file.Path)
		case strings.Contains(lower, "changelog") || strings.Contains(lower, "history"):
			doc.Changelog = append(doc.Changelog, file.Path)
		case strings.Contains(lower, "docs/") || strings.Contains(lower, "api") ||
			strings.Contains(lower, "guide") || strings.Contains(lower, "tutorial"):
			doc.TechnicalDocs = append(doc.TechnicalDocs, file.Path)
		case strings.HasSuffix(lower, ".md") || strings.Contains(lower, "documentation"):
			doc.Other = append(doc.Other, file.Path)
		}
	}

	if len(doc.Readme) > 0 {
		doc.Score += 2
	}
	if len(doc.Contributing) > 0 {
		doc.Score++
	}
	if len(doc.License) > 0 {
		doc.Score++
	}
	switch {
	case len(doc.TechnicalDocs) > 3:
		doc.Score += 2
	case len(doc.TechnicalDocs) > 0:
		doc.Score++
	}

	return doc
}

func (a *Analyzer) summary(data *ReportData) Summary {
	description := data.Repo.Description
	if a.redactor != nil {
		description = a.redactor.Redact(description)
	}

	s := Summary{
		FullName:     data.Repo.FullName,
		Description:  description,
		Stars:        data.Repo.Stars,
		Forks:        data.Repo.Forks,
		Watchers:     data.Repo.Watchers,
		OpenIssues:   openIssueCount(data.Issues),
		SizeMB:       float64(data.Repo.SizeKB) / 1024,
		Contributors: len(data.Contributors),
		Languages:    languageShares(data.Languages, 5),
		CreatedAt:    data.Repo.CreatedAt,
		UpdatedAt:    data.Repo.UpdatedAt,
		HTMLURL:      data.Repo.HTMLURL,
		Homepage:     data.Repo.Homepage,
	}

	for i, contributor := range data.Contributors {
		if i == 3 {
			break
		}
		s.TopContributors = append(s.TopContributors, contributor.Login)
	}

	return s
}

// openIssueCount counts open issues, excluding the pull requests the GitHub
// issues endpoint mixes in.
func openIssueCount(issues []IssueInfo) int {
	count := 0
	for _, issue := range issues {
		if issue.State == "open" && !issue.IsPullRequest {
			count++
		}
	}
	return count
}

func languageShares(languages map[string]int64, limit int) []LanguageShare {
	var total int64
	for _, bytes := range languages {
		total += bytes
	}
	if total == 0 {
		return nil
	}

	shares := make([]LanguageShare, 0, len(languages))
	for name, bytes := range languages {
		shares = append(shares, LanguageShare{
			Name:    name,
			Percent: float64(bytes) / float64(total) * 100,
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Percent != shares[j].Percent {
			return shares[i].Percent > shares[j].Percent
		}
		return shares[i].Name < shares[j].Name
	})

	if len(shares) > limit {
		shares = shares[:limit]
	}
	return shares
}
