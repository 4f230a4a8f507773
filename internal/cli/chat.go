package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/graph"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/graph/conversations"
	"github.com/Chative-core-poc-v1/sheetsql/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/sheetsql/internal/core/error"
	logx "github.com/Chative-core-poc-v1/sheetsql/pkg/logger"
)

const (
	chatExit  = "/exit"
	chatReset = "/reset"
)

type ChatCmd struct {
	opts           *rootOptions
	conversationID string
}

func NewChatCmd(opts *rootOptions) *ChatCmd {
	return &ChatCmd{opts: opts}
}

func (c *ChatCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive session with conversation history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.opts.withApp(ctx, func(a *app) error {
				a.serveMetrics(ctx)

				runner, err := a.runner(ctx)
				if err != nil {
					return err
				}
				conversationRepo, err := a.conversationRepo(ctx)
				if err != nil {
					return err
				}

				id := c.conversationID
				if id == "" {
					id = uuid.NewString()
				}

				s := &chatSession{
					runner:         runner,
					mm:             conversations.NewMessagesManager(conversationRepo, a.cfg.Agent),
					conversationID: id,
					render:         newMarkdownRenderer().Render,
					out:            cmd.OutOrStdout(),
				}
				return s.loop(ctx, cmd.InOrStdin())
			})
		},
	}

	cmd.Flags().StringVar(&c.conversationID, "conversation", "", "conversation id to resume (a new one is generated when empty)")

	return cmd
}

type chatSession struct {
	runner         graph.Runner
	mm             *conversations.MessagesManager
	conversationID string
	render         func(string) string
	out            io.Writer
}

func (s *chatSession) loop(ctx context.Context, in io.Reader) error {
	turns, err := s.mm.TurnCount(ctx, s.conversationID)
	if err != nil {
		return err
	}
	if turns > 0 {
		fmt.Fprintf(s.out, "Resuming conversation %s (%d turns).", s.conversationID, turns)
	} else {
		fmt.Fprintf(s.out, "Conversation %s.", s.conversationID)
	}
	fmt.Fprintf(s.out, " Type %s to quit, %s to forget the history.\n", chatExit, chatReset)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case chatExit:
			return nil
		case chatReset:
			if err := s.mm.ClearHistory(ctx, s.conversationID); err != nil {
				return err
			}
			fmt.Fprintln(s.out, "History cleared.")
			continue
		}

		if err := s.turn(ctx, line); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

// turn answers one line. Run failures are reported and the session goes on;
// only history storage failures end it.
func (s *chatSession) turn(ctx context.Context, question string) error {
	history, err := s.mm.LoadTurns(ctx, s.conversationID)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, graph.RunTimeout)
	defer cancel()

	run, err := s.runner.Invoke(runCtx, model.QueryInput{
		ConversationID: s.conversationID,
		Question:       question,
		History:        history,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logx.Error().Err(err).Str("conversation_id", s.conversationID).Msg("Chat turn failed")
		fmt.Fprintf(s.out, "Something went wrong (%s). Please try again.\n", userMessage(err))
		return nil
	}

	fmt.Fprint(s.out, s.render(run.Answer))
	return s.mm.SaveExchange(ctx, s.conversationID, question, run.Answer)
}

func userMessage(err error) string {
	var appErr *errx.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return errx.SystemErrorMessage
}
