package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/hupe1980/leadmesh"
	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/leadgen"
	"github.com/hupe1980/leadmesh/tool"
)

func newChatCommand(configPath *string) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive lead generation assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(*configPath, sessionID)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "default", "session identifier to resume or create")

	return cmd
}

func runChat(configPath, sessionID string) error {
	env, err := buildEnv(configPath)
	if err != nil {
		return err
	}
	defer env.Close()

	rl, err := readline.New("you> ")
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	root := leadgen.NewRootAgent(leadgen.Options{
		Advanced:  env.advanced,
		Fast:      env.fast,
		Search:    newSearchProvider(),
		MaxFanOut: env.cfg.Leadgen.MaxFanOut,
	}, &readlineChoices{rl: rl})

	mesh := leadmesh.New(root, func(o *leadmesh.Options) {
		o.SessionStore = env.store
		o.Hooks = leadgen.Hooks()
		o.Logger = env.logger
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Println("Lead generation assistant. Type your request, or 'q' to quit.")

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "q" || line == "quit" || line == "exit" {
			return nil
		}

		if err := runTurn(ctx, mesh, sessionID, line); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}

// runTurn sends one user message through the mesh and prints the final
// assistant message of the run.
func runTurn(ctx context.Context, mesh *leadmesh.LeadMesh, sessionID, message string) error {
	_, events, err := mesh.InvokeSync(ctx, sessionID, *core.NewTextContent("user", message))
	if err != nil {
		return err
	}

	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.IsError() || ev.Content == nil {
			continue
		}
		if text := ev.Content.Text(); text != "" {
			fmt.Printf("\nassistant> %s\n\n", text)
			return nil
		}
	}

	return nil
}

// readlineChoices presents user choice prompts on the terminal.
type readlineChoices struct {
	rl *readline.Instance
}

// Choose implements tool.ChoiceProvider by printing a numbered menu and
// reading a selection.
func (c *readlineChoices) Choose(ctx context.Context, question string, options []string) (string, error) {
	fmt.Printf("\n%s\n", question)
	for i, opt := range options {
		fmt.Printf("  %d. %s\n", i+1, opt)
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				return "", context.Canceled
			}
			return "", fmt.Errorf("failed to read choice: %w", err)
		}

		line = strings.TrimSpace(line)
		for i, opt := range options {
			if line == fmt.Sprintf("%d", i+1) || strings.EqualFold(line, opt) {
				return opt, nil
			}
		}

		fmt.Printf("Please enter 1-%d.\n", len(options))
	}
}

var _ tool.ChoiceProvider = (*readlineChoices)(nil)
