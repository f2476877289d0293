// Command reagent is an interactive runner for the agent loop: a readline
// chat over an OpenAI-backed model with the calculator tool registered, and
// optional guardrail evaluation around every exchange.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ejhollis/reagent"
	"github.com/ejhollis/reagent/calc"
	"github.com/ejhollis/reagent/guard"
	"github.com/ejhollis/reagent/internal/cliconfig"
	"github.com/ejhollis/reagent/models"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "reagent",
		Short:         "Tool-calling agent loop runner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(
		&configPath, "config", "c", "reagent.yaml",
		"path to the YAML config file (defaults apply if absent)")

	root.AddCommand(newChatCmd(&configPath))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func newChatCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cliconfig.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			agent, err := buildAgent(cfg)
			if err != nil {
				return err
			}
			return runChat(cfg, agent)
		},
	}
}

// buildAgent wires the model, tools, loop, and the optional guardrail
// wrapper from config and environment.
func buildAgent(cfg cliconfig.Config) (guard.Agent, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf(
			"OPENAI_API_KEY is not set.\n\n" +
				"Export your OpenAI API key before starting a chat:\n\n" +
				"  export OPENAI_API_KEY=sk-...")
	}
	model, err := models.NewOpenAIModel(apiKey)
	if err != nil {
		return nil, err
	}

	registry := reagent.NewRegistry()
	registry.MustRegister(calc.Tool())

	loopCfg := reagent.NewConfig(cfg.Model).
		WithSystemPrompt(cfg.SystemPrompt).
		WithMaxIterations(cfg.MaxIterations).
		WithTools(registry)
	if cfg.ParallelTools {
		loopCfg.WithParallelTools()
	}

	logHook, err := newLogHook(".logs/reagent.log")
	if err != nil {
		return nil, err
	}
	loop := reagent.NewLoop(model, loopCfg, reagent.WithHooks(logHook))

	if cfg.Guardrails.BaseURL == "" {
		return loop, nil
	}

	guardKey := os.Getenv("GUARDRAILS_API_KEY")
	if guardKey == "" {
		return nil, fmt.Errorf(
			"guardrails are configured (%s) but GUARDRAILS_API_KEY is not set.\n\n"+
				"Export the evaluator API key, or remove the guardrails section "+
				"from the config file.", cfg.Guardrails.BaseURL)
	}
	client := guard.NewClient(cfg.Guardrails.BaseURL, guardKey)
	guarded := guard.New(loop, client).
		WithInputChecks(toChecks(cfg.Guardrails.InputChecks)...).
		WithOutputChecks(toChecks(cfg.Guardrails.OutputChecks)...).
		WithAssertions(cfg.Guardrails.Assertions...)
	return guarded, nil
}

func toChecks(names []string) []guard.Check {
	checks := make([]guard.Check, 0, len(names))
	for _, name := range names {
		checks = append(checks, guard.Check(name))
	}
	return checks
}
