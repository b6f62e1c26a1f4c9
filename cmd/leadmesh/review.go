package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/leadmesh"
	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/review"
)

func newReviewCommand(configPath *string) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "review <file>",
		Short: "Review a source file and optionally fix it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(*configPath, args[0], fix)
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "run the fix loop after the review")

	return cmd
}

func runReview(configPath, file string, fix bool) error {
	env, err := buildEnv(configPath)
	if err != nil {
		return err
	}
	defer env.Close()

	code, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	opts := review.Options{
		Advanced:       env.advanced,
		Fast:           env.fast,
		Executor:       newLocalExecutor(),
		MaxFixAttempts: env.cfg.Review.MaxFixAttempts,
	}

	agents := []core.Agent{review.NewReviewAgent(opts)}
	if fix {
		agents = append(agents, review.NewFixAgent(opts))
	}

	ctx := context.Background()
	sessionID := fmt.Sprintf("review-%s", file)

	for i, a := range agents {
		mesh := leadmesh.New(a, func(o *leadmesh.Options) {
			o.SessionStore = env.store
			o.Logger = env.logger
		})

		content := core.Content{Role: "user"}
		if i == 0 {
			// Seed the code under review through the first turn's delta.
			if err := seedCode(env, sessionID, string(code)); err != nil {
				return err
			}
		}

		_, events, err := mesh.InvokeSync(ctx, sessionID, content)
		if err != nil {
			return err
		}

		printFinalMessage(events)
	}

	return nil
}

func seedCode(env *appEnv, sessionID, code string) error {
	if _, err := env.store.Get(sessionID); err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	return env.store.ApplyDelta(sessionID, map[string]any{review.StateKeyCode: code})
}

func printFinalMessage(events []core.Event) {
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.IsError() || ev.Content == nil {
			continue
		}
		if text := ev.Content.Text(); text != "" {
			fmt.Printf("\n%s\n", text)
			return
		}
	}
}
