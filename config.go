package reagent

import (
	"fmt"
	"time"

	"github.com/ejhollis/reagent/schema"
)

// DefaultMaxIterations bounds tool-dispatch rounds when the caller does not
// set a budget.
const DefaultMaxIterations = 10

// Config is the immutable configuration bundle for a Loop.
//
// Build it once with NewConfig and the With* chain, then share it across as
// many concurrent Run calls as you like; nothing mutates it afterwards.
type Config struct {
	systemPrompt  string
	modelID       string
	maxIterations int
	tools         *Registry
	outputSchema  *schema.Descriptor
	modelTimeout  time.Duration
	toolTimeout   time.Duration
	parallelTools bool
}

// NewConfig creates a Config for the given model identifier with defaults:
// no system prompt, DefaultMaxIterations, an empty registry, no output
// schema, no per-call timeouts, sequential tool dispatch.
func NewConfig(modelID string) *Config {
	return &Config{
		modelID:       modelID,
		maxIterations: DefaultMaxIterations,
		tools:         NewRegistry(),
	}
}

// WithSystemPrompt sets the system prompt seeded as the first transcript
// message of every run.
func (c *Config) WithSystemPrompt(prompt string) *Config {
	c.systemPrompt = prompt
	return c
}

// WithMaxIterations sets the iteration budget: the maximum number of
// tool-dispatch rounds before a run fails with *IterationBudgetError.
// Panics if n is not positive.
func (c *Config) WithMaxIterations(n int) *Config {
	if n <= 0 {
		panic(fmt.Sprintf("reagent: max iterations must be positive, got %d", n))
	}
	c.maxIterations = n
	return c
}

// WithTools sets the tool registry. The registry may be empty but must not
// be modified after the config is handed to a Loop.
func (c *Config) WithTools(r *Registry) *Config {
	if r == nil {
		r = NewRegistry()
	}
	c.tools = r
	return c
}

// WithOutputSchema sets the descriptor the final answer must conform to.
// When set, Run returns a typed value instead of free text.
func (c *Config) WithOutputSchema(d *schema.Descriptor) *Config {
	c.outputSchema = d
	return c
}

// WithModelTimeout bounds each individual model call. Zero means no
// per-call timeout beyond the run's own context.
func (c *Config) WithModelTimeout(d time.Duration) *Config {
	c.modelTimeout = d
	return c
}

// WithToolTimeout bounds each individual tool handler invocation. Zero means
// no per-call timeout beyond the run's own context.
func (c *Config) WithToolTimeout(d time.Duration) *Config {
	c.toolTimeout = d
	return c
}

// WithParallelTools enables concurrent dispatch of the tool calls within one
// model turn. Observations are still appended to the transcript in the order
// the model emitted the calls, and a failing call never aborts its siblings.
//
// Leave this off when tool handlers have ordering-sensitive side effects
// (e.g. a "book then pay" pair).
func (c *Config) WithParallelTools() *Config {
	c.parallelTools = true
	return c
}

// SystemPrompt returns the configured system prompt.
func (c *Config) SystemPrompt() string { return c.systemPrompt }

// ModelID returns the configured model identifier.
func (c *Config) ModelID() string { return c.modelID }

// MaxIterations returns the iteration budget.
func (c *Config) MaxIterations() int { return c.maxIterations }

// Tools returns the tool registry.
func (c *Config) Tools() *Registry { return c.tools }

// OutputSchema returns the output descriptor, or nil for free-text answers.
func (c *Config) OutputSchema() *schema.Descriptor { return c.outputSchema }
