// Package cli implements qwenctl, a terminal client that talks to the chat
// completion API directly, without the HTTP server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"qwen-console/internal/config"
	"qwen-console/internal/llm"
	"qwen-console/internal/mathfmt"
	"qwen-console/internal/repository"
	"qwen-console/internal/service"
)

type options struct {
	apiURL   string
	apiKey   string
	model    string
	timeout  time.Duration
	logLevel string
}

// env is what every subcommand works with: one session backed by an
// in-memory repository.
type env struct {
	chat       *service.ChatService
	connection *service.ConnectionService
	cfg        *config.Config
	sessionID  string
	print      *printer
}

// NewRootCmd builds the qwenctl command tree. Output goes to out; defaults come
// from the same environment and .env file as the server.
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "qwenctl",
		Short:         "Talk to a Qwen chat completion API from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "API base URL (default: API_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", "", "API key (default: API_KEY)")
	rootCmd.PersistentFlags().StringVar(&opts.model, "model", "", "Model name (default: DEFAULT_MODEL)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "Request timeout (default: REQUEST_TIMEOUT)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "WARN", "Log level: DEBUG|INFO|WARN|ERROR")

	rootCmd.AddCommand(
		newStatusCmd(opts),
		newModelsCmd(opts),
		newAskCmd(opts),
		newNewChatCmd(opts),
		newChatCmd(opts),
	)
	return rootCmd
}

// Execute runs qwenctl and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd(os.Stdout)
	if err := cmd.Execute(); err != nil {
		newPrinter(os.Stderr).errorf("%v", err)
		return 1
	}
	return 0
}

func setupLogger(level string) {
	var l slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		l = slog.LevelDebug
	case "INFO":
		l = slog.LevelInfo
	case "ERROR":
		l = slog.LevelError
	default:
		l = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

// newEnv resolves the connection from flags over configuration and opens a
// fresh session.
func newEnv(ctx context.Context, cmd *cobra.Command, opts *options) (*env, error) {
	setupLogger(opts.logLevel)

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	settings := service.StaticSettings{APIURL: cfg.APIURL, APIKey: cfg.APIKey, Model: cfg.DefaultModel}
	if opts.apiURL != "" {
		settings.APIURL = opts.apiURL
	}
	if cmd.Flags().Changed("api-key") {
		settings.APIKey = opts.apiKey
	}
	if opts.model != "" {
		settings.Model = opts.model
	}
	timeout := cfg.RequestTimeout
	if opts.timeout > 0 {
		timeout = opts.timeout
	}

	client := llm.NewClient(llm.NewHTTPClient(timeout))
	repo := repository.NewMemoryRepository()
	e := &env{
		chat:       service.NewChatService(repo, client, settings, mathfmt.New(cfg.MathFragments), service.ContextPrompt(cfg.ContextPrompt)),
		connection: service.NewConnectionService(repo, client),
		cfg:        cfg,
		print:      newPrinter(cmd.OutOrStdout()),
	}

	sess, err := e.chat.CreateSession(ctx)
	if err != nil {
		return nil, err
	}
	e.sessionID = sess.ID
	return e, nil
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the connection and list the available models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			return e.status(cmd.Context())
		},
	}
}

func (e *env) status(ctx context.Context) error {
	report, err := e.connection.Test(ctx, e.sessionID)
	if err != nil {
		return describeUpstream(err)
	}
	e.print.ok("Connected")
	if report.Authenticated != nil {
		e.print.field("Authenticated", fmt.Sprintf("%t", *report.Authenticated))
	}
	if report.ModelsError != "" {
		e.print.warn("Could not fetch models: " + report.ModelsError)
	} else {
		e.print.field("Models", strings.Join(report.Models, ", "))
	}
	e.print.field("Selected model", report.SelectedModel)
	return nil
}

func newModelsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models the API offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			ids, err := e.connection.ListModels(cmd.Context(), e.sessionID)
			if err != nil {
				return describeUpstream(err)
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newAskCmd(opts *options) *cobra.Command {
	var contextText, contextFile string

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			text, err := e.resolveContext(contextText, contextFile)
			if err != nil {
				return err
			}
			exchange, err := e.chat.Submit(cmd.Context(), e.sessionID, strings.Join(args, " "), text)
			if err != nil {
				return describeUpstream(err)
			}
			e.print.markdown(exchange.Rendered)
			return nil
		},
	}
	cmd.Flags().StringVar(&contextText, "context", "", "Context the answer must be based on")
	cmd.Flags().StringVar(&contextFile, "context-file", "", "Read the context from a .txt file")
	cmd.MarkFlagsMutuallyExclusive("context", "context-file")
	return cmd
}

func (e *env) resolveContext(text, path string) (string, error) {
	if path == "" {
		return text, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("could not open context file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return service.ReadContextFile(f, path, e.cfg.MaxContextBytes)
}

func newNewChatCmd(opts *options) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "new-chat",
		Short: "Create a chat on the server and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			sess, err := e.chat.NewChat(cmd.Context(), e.sessionID, name)
			if err != nil {
				return describeUpstream(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess.ChatID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", service.DefaultChatName, "Chat name")
	return cmd
}

// describeUpstream turns client errors into messages a terminal user can act
// on. Other errors pass through.
func describeUpstream(err error) error {
	if llm.IsTransport(err) {
		return fmt.Errorf("could not reach the API, check --api-url and that the server is running: %w", err)
	}
	if se, ok := llm.AsStatus(err); ok && (se.StatusCode == 401 || se.StatusCode == 403) {
		return fmt.Errorf("the API rejected the key (HTTP %d), check --api-key: %w", se.StatusCode, err)
	}
	return err
}

var errQuit = errors.New("quit")
