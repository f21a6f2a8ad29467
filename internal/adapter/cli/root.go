package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidmanzanoai/github-analytics/internal/adapter/llm"
	llmhttp "github.com/davidmanzanoai/github-analytics/internal/adapter/llm/http"
	"github.com/davidmanzanoai/github-analytics/internal/domain"
	"github.com/davidmanzanoai/github-analytics/internal/store"
	"github.com/davidmanzanoai/github-analytics/internal/usecase/analysis"
	"github.com/davidmanzanoai/github-analytics/internal/usecase/session"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// SessionFactory builds a conversation session, or fails when the answering
// service is not configured (missing API key).
type SessionFactory func() (*session.Session, error)

// Resolver turns CLI repository references into a repository identity.
type Resolver interface {
	Resolve(input string) (domain.RepositoryIdentity, error)
}

// ReportBuilder computes the local analytics report.
type ReportBuilder interface {
	Report(ctx context.Context, repo domain.RepositoryIdentity) (*analysis.Report, error)
}

// HistoryLister lists recent stored sessions.
type HistoryLister interface {
	ListSessions(ctx context.Context, limit int) ([]store.SessionSummary, error)
}

// MarkdownRenderer renders and saves Markdown reports.
type MarkdownRenderer interface {
	Render(report *analysis.Report) string
	Save(report *analysis.Report, outputDir string) (string, error)
}

// JSONRenderer renders and saves JSON reports.
type JSONRenderer interface {
	Render(report *analysis.Report) ([]byte, error)
	Save(report *analysis.Report, outputDir string) (string, error)
}

// Metrics exposes accumulated usage for the chat exit summary.
type Metrics interface {
	GetStats() llmhttp.Stats
}

// Arguments encapsulates IO streams injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
	InReader  io.Reader
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	NewSession    SessionFactory
	Resolver      Resolver
	Analyzer      ReportBuilder
	History       HistoryLister
	Markdown      MarkdownRenderer
	JSON          JSONRenderer
	Metrics       Metrics
	Interactive   func() bool // TTY check gating chat; defaults to stdin detection
	Args          Arguments
	DefaultOutput string
	Version       string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "gha",
		Short: "Ask questions about GitHub repositories",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	if deps.Args.InReader == nil {
		deps.Args.InReader = os.Stdin
	}
	if deps.Interactive == nil {
		deps.Interactive = IsInteractive
	}

	root.AddCommand(quickCommand(deps))
	root.AddCommand(analyzeCommand(deps))
	root.AddCommand(chatCommand(deps))
	root.AddCommand(reportCommand(deps))
	root.AddCommand(historyCommand(deps))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func quickCommand(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "quick <repository> <question>",
		Short: "Ask a single question without keeping a conversation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := deps.Resolver.Resolve(args[0])
			if err != nil {
				return err
			}

			sess, err := deps.NewSession()
			if err != nil {
				return err
			}

			answer, err := sess.QuickQuestion(cmd.Context(), repo, args[1])
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}

func analyzeCommand(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <repository> <question>",
		Short: "Start an analysis conversation and ask the first question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := deps.Resolver.Resolve(args[0])
			if err != nil {
				return err
			}

			sess, err := deps.NewSession()
			if err != nil {
				return err
			}

			answer, err := sess.StartAnalysis(cmd.Context(), repo, args[1])
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}

// suggestedQuestions mirrors the numbered menu shown at each chat prompt.
var suggestedQuestions = []string{
	"Who is the top contributor and how many contributions do they have?",
	"How fast is this project developing? Summarize the recent commit activity.",
	"Which part of the codebase looks most complex, and why?",
	"How complete is the project documentation? What is missing?",
	"Give me an executive summary of this repository.",
	"What technologies and languages does this project use?",
}

func chatCommand(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <repository>",
		Short: "Hold an interactive conversation about a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !deps.Interactive() {
				return fmt.Errorf("chat requires an interactive terminal; use quick or analyze instead")
			}

			repo, err := deps.Resolver.Resolve(args[0])
			if err != nil {
				return err
			}

			sess, err := deps.NewSession()
			if err != nil {
				return err
			}

			return runChatLoop(cmd, deps, sess, repo)
		},
	}
}

func runChatLoop(cmd *cobra.Command, deps Dependencies, sess *session.Session, repo domain.RepositoryIdentity) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(deps.Args.InReader)

	_, _ = fmt.Fprintf(out, "Chatting about %s. Type a number, 0 for your own question, or exit.\n", repo.FullName())

	for {
		printMenu(out)
		_, _ = fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		choice := strings.TrimSpace(scanner.Text())

		var question string
		switch {
		case choice == "":
			continue
		case isExit(choice):
			printChatSummary(out, deps, sess)
			return scanner.Err()
		case choice == "0":
			_, _ = fmt.Fprint(out, "Your question: ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			question = strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}
		default:
			question = menuQuestion(choice)
			if question == "" {
				_, _ = fmt.Fprintf(out, "Unknown choice %q.\n", choice)
				continue
			}
		}

		answer, err := askInChat(cmd.Context(), sess, repo, question)
		if err != nil {
			// The user turn stays in the transcript and the session
			// remains usable, so keep the loop going.
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			continue
		}
		_, _ = fmt.Fprintf(out, "\n%s\n\n", answer)
	}

	printChatSummary(out, deps, sess)
	return scanner.Err()
}

func askInChat(ctx context.Context, sess *session.Session, repo domain.RepositoryIdentity, question string) (string, error) {
	if !sess.Active() {
		return sess.StartAnalysis(ctx, repo, question)
	}
	return sess.ContinueConversation(ctx, question)
}

func printMenu(out io.Writer) {
	_, _ = fmt.Fprintln(out, "Suggested questions:")
	for i, question := range suggestedQuestions {
		_, _ = fmt.Fprintf(out, "  %d. %s\n", i+1, question)
	}
	_, _ = fmt.Fprintln(out, "  0. Ask your own question")
	_, _ = fmt.Fprintln(out, "  exit. Quit")
}

func menuQuestion(choice string) string {
	for i := range suggestedQuestions {
		if choice == fmt.Sprintf("%d", i+1) {
			return suggestedQuestions[i]
		}
	}
	return ""
}

func isExit(input string) bool {
	switch strings.ToLower(input) {
	case "exit", "quit", "q":
		return true
	}
	return false
}

func printChatSummary(out io.Writer, deps Dependencies, sess *session.Session) {
	if deps.Metrics != nil {
		stats := deps.Metrics.GetStats()
		if stats.TotalRequests > 0 {
			_, _ = fmt.Fprintf(out, "Usage: %d requests, %d tokens in, %d tokens out, $%.4f\n",
				stats.TotalRequests, stats.TotalTokensIn, stats.TotalTokensOut, stats.TotalCost)
		}
	}
	if transcript := sess.Transcript(); len(transcript) > 0 {
		_, _ = fmt.Fprintf(out, "Transcript size: ~%d tokens across %d turns\n",
			llm.EstimateTranscriptTokens(transcript), len(transcript))
	}
}

func reportCommand(deps Dependencies) *cobra.Command {
	var format string
	var save bool
	var outputDir string

	cmd := &cobra.Command{
		Use:   "report <repository>",
		Short: "Compute a local analytics report without calling the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := deps.Resolver.Resolve(args[0])
			if err != nil {
				return err
			}

			report, err := deps.Analyzer.Report(cmd.Context(), repo)
			if err != nil {
				return err
			}

			switch format {
			case "markdown":
				if save {
					path, err := deps.Markdown.Save(report, outputDir)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
					return nil
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), deps.Markdown.Render(report))
				return nil
			case "json":
				if save {
					path, err := deps.JSON.Save(report, outputDir)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
					return nil
				}
				data, err := deps.JSON.Render(report)
				if err != nil {
					return err
				}
				_, _ = cmd.OutOrStdout().Write(data)
				return nil
			default:
				return fmt.Errorf("unknown format %q: expected markdown or json", format)
			}
		},
	}

	defaultOutput := deps.DefaultOutput
	if defaultOutput == "" {
		defaultOutput = "out"
	}
	cmd.Flags().StringVar(&format, "format", "markdown", "Report format (markdown or json)")
	cmd.Flags().BoolVar(&save, "save", false, "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&outputDir, "output", defaultOutput, "Directory for saved reports")

	return cmd
}

func historyCommand(deps Dependencies) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.History == nil {
				return fmt.Errorf("session history is disabled; enable store in the configuration")
			}

			sessions, err := deps.History.ListSessions(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				_, _ = fmt.Fprintln(out, "No stored sessions.")
				return nil
			}

			for _, s := range sessions {
				_, _ = fmt.Fprintf(out, "%s  %s  %s  %d turns\n",
					s.ID, s.StartedAt.Format("2006-01-02 15:04"), s.Repository(), s.Turns)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum sessions to list (0 for all)")

	return cmd
}
