package domain_test

import (
	"errors"
	"testing"

	"github.com/davidmanzanoai/github-analytics/internal/domain"
)

func TestRepositoryIdentityFullName(t *testing.T) {
	repo := domain.RepositoryIdentity{Owner: "octocat", Name: "hello-world"}
	if got := repo.FullName(); got != "octocat/hello-world" {
		t.Fatalf("FullName() = %q, want %q", got, "octocat/hello-world")
	}
}

func TestTranscriptCloneIsIndependent(t *testing.T) {
	original := domain.Transcript{
		{Role: domain.RoleUser, Text: "summarize"},
		{Role: domain.RoleAssistant, Text: "A demo repo."},
	}

	clone := original.Clone()
	clone[0].Text = "mutated"

	if original[0].Text != "summarize" {
		t.Errorf("mutating the clone changed the original: %q", original[0].Text)
	}
	if len(clone) != len(original) {
		t.Errorf("clone length = %d, want %d", len(clone), len(original))
	}
}

func TestTranscriptCloneNil(t *testing.T) {
	var none domain.Transcript
	if got := none.Clone(); got != nil {
		t.Errorf("Clone() of nil transcript = %v, want nil", got)
	}
}

func TestExternalServiceErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &domain.ExternalServiceError{Service: "answering service", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}

	var svcErr *domain.ExternalServiceError
	if !errors.As(error(err), &svcErr) {
		t.Fatal("errors.As should match *ExternalServiceError")
	}
	if svcErr.Service != "answering service" {
		t.Errorf("Service = %q, want %q", svcErr.Service, "answering service")
	}
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := &domain.ConfigurationError{Reason: "anthropic API key is not set"}
	want := "configuration error: anthropic API key is not set"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
