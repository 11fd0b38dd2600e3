package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const replHelp = `Commands:
  /context [text]  use text as context for the following questions; no text clears it
  /clear           clear the history and forget the chat ids
  /new [name]      start a new chat on the server
  /config          show the request configuration
  /quit            leave`

func newChatCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			return runREPL(cmd.Context(), &repl{env: e})
		},
	}
}

// repl holds the state of an interactive conversation between lines.
type repl struct {
	*env
	context string
}

func runREPL(ctx context.Context, r *repl) error {
	line := liner.NewLiner()
	defer func() { _ = line.Close() }()
	line.SetCtrlCAborts(true)

	if sess, err := r.chat.GetSession(ctx, r.sessionID); err == nil {
		r.print.field("API", sess.Connection.APIURL)
		r.print.field("Model", sess.Connection.Model)
	}
	fmt.Fprintln(r.print.out, "Type /help for commands.")

	for {
		input, err := line.Prompt("qwen> ")
		if err != nil {
			// Ctrl+C, Ctrl+D and closed input all end the session.
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				return err
			}
			fmt.Fprintln(r.print.out)
			return nil
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		if err := r.handle(ctx, input); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			r.print.errorf("%v", describeUpstream(err))
		}
	}
}

// handle runs one line of input: a slash command or a question.
func (r *repl) handle(ctx context.Context, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		r.print.warn("Please enter a question.")
		return nil
	}
	if !strings.HasPrefix(input, "/") {
		exchange, err := r.chat.Submit(ctx, r.sessionID, input, r.context)
		if err != nil {
			return err
		}
		r.print.markdown(exchange.Rendered)
		return nil
	}

	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/quit", "/exit":
		return errQuit
	case "/help":
		fmt.Fprintln(r.print.out, replHelp)
	case "/context":
		r.context = arg
		if arg == "" {
			r.print.ok("Context cleared.")
		} else {
			r.print.ok(fmt.Sprintf("Context set (%d characters).", len([]rune(arg))))
		}
	case "/clear":
		if _, err := r.chat.ClearHistory(ctx, r.sessionID); err != nil {
			return err
		}
		r.print.ok("History cleared.")
	case "/new":
		sess, err := r.chat.NewChat(ctx, r.sessionID, arg)
		if err != nil {
			return err
		}
		r.print.ok("Started chat " + sess.ChatID)
	case "/config":
		cfg, err := r.chat.RequestConfig(ctx, r.sessionID)
		if err != nil {
			return err
		}
		fmt.Fprint(r.print.out, cfg.String())
	default:
		return fmt.Errorf("unknown command %s, type /help for the list", name)
	}
	return nil
}
