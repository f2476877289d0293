package guard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ejhollis/reagent"
)

// Agent is anything that can drive one conversational task to completion.
// *reagent.Loop satisfies it.
type Agent interface {
	Run(ctx context.Context, input string) (*reagent.Result, error)
}

// Evaluator is the remote verdict capability consumed by Guarded. *Client
// satisfies it; tests substitute a stub.
type Evaluator interface {
	Evaluate(ctx context.Context, req *Request) (*Verdict, error)
}

// BlockedError is returned when an evaluation verdict fails, carrying the
// verdict so callers can inspect which checks flagged the content.
type BlockedError struct {
	// Stage is "input" when the user input was blocked before the run, or
	// "output" when the run's answer was blocked after it.
	Stage   string
	Verdict *Verdict
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s blocked by evaluator (score %d)", e.Stage, e.Verdict.Score)
}

// Guarded composes evaluator checks around an agent: input checks run before
// the agent, output checks run on the final answer. The agent itself is
// untouched; guardrails are an external collaborator, not a loop concern.
type Guarded struct {
	agent        Agent
	eval         Evaluator
	inputChecks  []Check
	outputChecks []Check
	assertions   []string
}

// New wraps an agent with an evaluator. Without any With* configuration the
// wrapper is a pass-through.
func New(agent Agent, eval Evaluator) *Guarded {
	return &Guarded{agent: agent, eval: eval}
}

// WithInputChecks sets the checks run on user input before the agent runs.
func (g *Guarded) WithInputChecks(checks ...Check) *Guarded {
	g.inputChecks = checks
	return g
}

// WithOutputChecks sets the checks run on the agent's final answer.
func (g *Guarded) WithOutputChecks(checks ...Check) *Guarded {
	g.outputChecks = checks
	return g
}

// WithAssertions sets policy statements evaluated against the output under
// CheckPolicyAdherence.
func (g *Guarded) WithAssertions(assertions ...string) *Guarded {
	g.assertions = assertions
	return g
}

// Run evaluates the input, runs the agent, then evaluates the output.
// A failed verdict surfaces as *BlockedError; evaluator transport errors are
// returned as-is. The agent never runs when the input is blocked.
func (g *Guarded) Run(ctx context.Context, input string) (*reagent.Result, error) {
	if len(g.inputChecks) > 0 {
		verdict, err := g.eval.Evaluate(ctx, &Request{
			Input:  input,
			Checks: g.inputChecks,
		})
		if err != nil {
			return nil, fmt.Errorf("input evaluation: %w", err)
		}
		if !verdict.Passed() {
			return nil, &BlockedError{Stage: "input", Verdict: verdict}
		}
	}

	result, err := g.agent.Run(ctx, input)
	if err != nil {
		return nil, err
	}

	if len(g.outputChecks) > 0 {
		verdict, err := g.eval.Evaluate(ctx, &Request{
			Input:      input,
			Output:     answerText(result),
			Checks:     g.outputChecks,
			Assertions: g.assertions,
		})
		if err != nil {
			return nil, fmt.Errorf("output evaluation: %w", err)
		}
		if !verdict.Passed() {
			return nil, &BlockedError{Stage: "output", Verdict: verdict}
		}
	}

	return result, nil
}

// answerText renders the run's answer for evaluation: the free text, or the
// structured value serialized as JSON.
func answerText(result *reagent.Result) string {
	if result.Text != "" {
		return result.Text
	}
	if result.Value == nil {
		return ""
	}
	b, err := json.Marshal(result.Value)
	if err != nil {
		return ""
	}
	return string(b)
}
