package domain

import "fmt"

// Role identifies the author of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// RepositoryIdentity names a GitHub repository by owner and name. It is set
// when a session starts an analysis and replaced only by starting a new one.
type RepositoryIdentity struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// FullName returns the owner/name form used by the GitHub API.
func (r RepositoryIdentity) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// Turn is a single exchanged message. Immutable once appended.
type Turn struct {
	Role Role
	Text string
}

// Transcript is the ordered record of exchanged turns. Insertion order is
// significant: the whole sequence is replayed to the answering service as
// conversational context on every call.
type Transcript []Turn

// Clone returns an independent copy so callers cannot mutate a session's
// transcript through a returned slice.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}

// TokenUsage reports the token counts a model call consumed and produced.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Answer is the answering service's reply to a question. The session core
// consumes only Text; the remaining fields feed observability.
type Answer struct {
	Text  string
	Model string
	Usage TokenUsage
}

/// AnswerRequest is what the session manager hands the answering service: the
// transcript, ending with the new user turn, plus the repository the session
// targets. Repository is nil when no repository context applies.
type AnswerRequest struct {
	Transcript Transcript
	Repository *RepositoryIdentity
}
