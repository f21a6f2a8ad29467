// Package github provides a read-only client for the GitHub REST API
// endpoints that describe a repository: metadata, contributors, recent
// commits, the file tree, issues, and language statistics.
//
// The client performs one request per endpoint with no pagination and no
// retries; analyses operate on a recent window of activity, and failures
// surface to the caller immediately.
package github
