package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"

	"github.com/ejhollis/reagent"
	"github.com/ejhollis/reagent/guard"
	"github.com/ejhollis/reagent/internal/cliconfig"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

// runChat reads inputs with readline and drives one run per input. Ctrl-C
// cancels the in-flight run; "q" or EOF ends the session.
func runChat(cfg cliconfig.Config, agent guard.Agent) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rl, err := readline.New(colorCyan + "you> " + colorReset)
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Printf("%sModel %s, max %d iterations. 'q' to quit.%s\n",
		colorDim, cfg.Model, cfg.MaxIterations, colorReset)

	for {
		line, err := rl.Readline()
		if err != nil {
			// Ctrl-C on an empty prompt or Ctrl-D ends the session.
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "q" || input == "quit" || input == "exit" {
			return nil
		}

		result, err := agent.Run(ctx, input)
		if err != nil {
			printRunError(err)
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		printResult(result)
	}
}

func printResult(result *reagent.Result) {
	if result.Value != nil {
		rendered, err := json.MarshalIndent(result.Value, "", "  ")
		if err == nil {
			fmt.Printf("%s%s%s\n", colorGreen, rendered, colorReset)
		}
	} else {
		fmt.Printf("%s%s%s\n", colorGreen, result.Text, colorReset)
	}
	fmt.Printf("%s(%d model calls, %d tool calls, %d+%d tokens, %v)%s\n",
		colorDim,
		result.Stats.ModelCalls, result.Stats.ToolCalls,
		result.Stats.InputTokens, result.Stats.OutputTokens,
		result.Stats.Duration.Round(time.Millisecond), colorReset)
}

func printRunError(err error) {
	var blocked *guard.BlockedError
	if errors.As(err, &blocked) {
		fmt.Printf("%sBlocked (%s):%s\n", colorYellow, blocked.Stage, colorReset)
		for _, res := range blocked.Verdict.Results {
			fmt.Printf("%s  %s: %s (score %d)%s\n",
				colorYellow, res.Check, res.Label, res.Score, colorReset)
		}
		return
	}
	fmt.Printf("%sError: %v%s\n", colorRed, err, colorReset)
}

// logHook writes model and tool call lines to a session log file.
type logHook struct {
	log *log.Logger
}

func newLogHook(path string) (*logHook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &logHook{log: log.New(f, "", log.LstdFlags)}, nil
}

func (h *logHook) OnAfterModelCall(ctx context.Context, e reagent.AfterModelCallEvent) {
	if e.Err != nil {
		h.log.Printf("model call %d failed: %v", e.Iteration, e.Err)
		return
	}
	h.log.Printf("model call %d: kind=%d", e.Iteration, e.Response.Kind)
}

func (h *logHook) OnAfterToolCall(ctx context.Context, e reagent.AfterToolCallEvent) {
	if e.Result.IsError {
		h.log.Printf("tool %s error: %s", e.Call.Name, e.Result.Content)
		return
	}
	h.log.Printf("tool %s ok", e.Call.Name)
}

func (h *logHook) OnAfterRun(ctx context.Context, e reagent.AfterRunEvent) {
	if e.Err != nil {
		h.log.Printf("run failed: %v", e.Err)
		return
	}
	h.log.Printf("run done: %d iterations, %d tool calls",
		e.Result.Stats.Iterations, e.Result.Stats.ToolCalls)
}
