package calc

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ejhollis/reagent"
	"github.com/ejhollis/reagent/schema"
)

// ToolName is the identifier the model uses to call the evaluator.
const ToolName = "calculator"

// Tool returns a ready-made tool definition exposing Evaluate to the agent.
// Evaluation failures are returned as errors, so the loop reports them to
// the model as tool-error observations rather than failing the run.
func Tool() *reagent.ToolDefinition {
	params := schema.NewDescriptor().
		Field("expression", schema.TypeString,
			`Arithmetic expression using + - * / without parentheses, e.g. "2+3*4"`)

	return reagent.NewTool(
		ToolName,
		"Evaluate a basic arithmetic expression with two precedence tiers: "+
			"* and / bind tighter than + and -. No parentheses.",
		params,
		func(ctx context.Context, args map[string]any) (string, error) {
			expr, ok := args["expression"].(string)
			if !ok {
				return "", fmt.Errorf("expression must be a string")
			}
			v, err := Evaluate(expr)
			if err != nil {
				return "", err
			}
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		},
	)
}
