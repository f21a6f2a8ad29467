package json_test

import (
	stdjson "encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsonwriter "github.com/davidmanzanoai/github-analytics/internal/adapter/output/json"
	"github.com/davidmanzanoai/github-analytics/internal/usecase/analysis"
)

func demoReport() *analysis.Report {
	return &analysis.Report{
		Repository:  "octocat/hello-world",
		GeneratedAt: time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC),
		TopContributor: &analysis.TopContributor{
			Login:             "octocat",
			Contributions:     1500,
			Percent:           75.0,
			TotalContributors: 4,
		},
		Documentation: analysis.Documentation{
			Readme:   []string{"README.md"},
			Score:    2,
			MaxScore: 6,
		},
		Summary: analysis.Summary{
			FullName:   "octocat/hello-world",
			Stars:      12345,
			OpenIssues: 7,
		},
	}
}

func TestRenderRoundTrips(t *testing.T) {
	writer := jsonwriter.NewWriter(func() string { return "ts" })

	data, err := writer.Render(demoReport())
	require.NoError(t, err)

	var decoded analysis.Report
	require.NoError(t, stdjson.Unmarshal(data, &decoded))

	assert.Equal(t, "octocat/hello-world", decoded.Repository)
	require.NotNil(t, decoded.TopContributor)
	assert.Equal(t, "octocat", decoded.TopContributor.Login)
	assert.Equal(t, 12345, decoded.Summary.Stars)
	assert.Nil(t, decoded.Velocity)
}

func TestSaveWritesTimestampedFile(t *testing.T) {
	writer := jsonwriter.NewWriter(func() string { return "20260214T093000Z" })
	dir := t.TempDir()

	path, err := writer.Save(demoReport(), dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "octocat-hello-world_report_20260214T093000Z.json"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"repository": "octocat/hello-world"`)
}

func TestSaveCreatesOutputDir(t *testing.T) {
	writer := jsonwriter.NewWriter(func() string { return "ts" })
	dir := filepath.Join(t.TempDir(), "nested")

	path, err := writer.Save(demoReport(), dir)

	require.NoError(t, err)
	assert.FileExists(t, path)
}
