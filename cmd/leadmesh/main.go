// Command leadmesh is the interactive front end for the lead generation and
// code review assistants.
package main

import (
	"fmt"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/hupe1980/leadmesh/config"
	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/logging"
	"github.com/hupe1980/leadmesh/model"
	"github.com/hupe1980/leadmesh/model/anthropic"
	"github.com/hupe1980/leadmesh/model/openai"
	"github.com/hupe1980/leadmesh/session"
	sqlitesession "github.com/hupe1980/leadmesh/session/sqlite"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "leadmesh",
		Short: "Model-driven lead generation and code review assistants",
		Long:  "Leadmesh coordinates model agents through sequential, parallel and loop workflows over shared session state.",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	rootCmd.AddCommand(newChatCommand(&configPath))
	rootCmd.AddCommand(newReviewCommand(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// appEnv bundles everything a command needs that derives from configuration.
type appEnv struct {
	cfg      config.Config
	logger   logging.Logger
	advanced model.Model
	fast     model.Model
	store    core.SessionStore
	closeFn  func() error
}

func (e *appEnv) Close() error {
	if e.closeFn != nil {
		return e.closeFn()
	}

	return nil
}

func buildEnv(configPath string) (*appEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(&logging.Config{
		Level:  logging.ParseLogLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	advanced, fast, err := buildModels(cfg.Models)
	if err != nil {
		return nil, err
	}

	env := &appEnv{cfg: cfg, logger: logger, advanced: advanced, fast: fast}

	if cfg.Session.DBPath != "" {
		store, err := sqlitesession.New(cfg.Session.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		env.store = store
		env.closeFn = store.Close
	} else {
		env.store = session.NewInMemoryStore()
	}

	return env, nil
}

func buildModels(cfg config.ModelsConfig) (advanced, fast model.Model, err error) {
	switch cfg.Provider {
	case "anthropic":
		advanced = anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Advanced != "" {
				o.Model = anthropicsdk.Model(cfg.Advanced)
			}
		})
		fast = anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Fast != "" {
				o.Model = anthropicsdk.Model(cfg.Fast)
			}
		})
	case "openai":
		advanced = openai.NewModel(func(o *openai.Options) {
			if cfg.Advanced != "" {
				o.Model = cfg.Advanced
			}
		})
		fast = openai.NewModel(func(o *openai.Options) {
			if cfg.Fast != "" {
				o.Model = cfg.Fast
			}
		})
	case "mock":
		advanced = model.NewMockModel("mock-advanced", "mock")
		fast = model.NewMockModel("mock-fast", "mock")
	default:
		return nil, nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}

	return advanced, fast, nil
}
