package reagent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ejhollis/reagent/schema"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewConfig("gpt-4o-mini")

	assert.Equal(t, "gpt-4o-mini", cfg.ModelID())
	assert.Empty(t, cfg.SystemPrompt())
	assert.Equal(t, DefaultMaxIterations, cfg.MaxIterations())
	assert.NotNil(t, cfg.Tools())
	assert.Equal(t, 0, cfg.Tools().Len())
	assert.Nil(t, cfg.OutputSchema())
	assert.False(t, cfg.parallelTools)
	assert.Zero(t, cfg.modelTimeout)
	assert.Zero(t, cfg.toolTimeout)
}

func TestConfig_Builder(t *testing.T) {
	r := NewRegistry()
	desc := schema.NewDescriptor().Field("answer", schema.TypeString, "")

	cfg := NewConfig("gpt-4o").
		WithSystemPrompt("be brief").
		WithMaxIterations(3).
		WithTools(r).
		WithOutputSchema(desc).
		WithModelTimeout(30 * time.Second).
		WithToolTimeout(5 * time.Second).
		WithParallelTools()

	assert.Equal(t, "be brief", cfg.SystemPrompt())
	assert.Equal(t, 3, cfg.MaxIterations())
	assert.Same(t, r, cfg.Tools())
	assert.Same(t, desc, cfg.OutputSchema())
	assert.Equal(t, 30*time.Second, cfg.modelTimeout)
	assert.Equal(t, 5*time.Second, cfg.toolTimeout)
	assert.True(t, cfg.parallelTools)
}

func TestConfig_WithMaxIterationsPanics(t *testing.T) {
	assert.Panics(t, func() { NewConfig("m").WithMaxIterations(0) })
	assert.Panics(t, func() { NewConfig("m").WithMaxIterations(-1) })
}

func TestConfig_WithNilToolsResetsToEmpty(t *testing.T) {
	cfg := NewConfig("m").WithTools(nil)
	assert.NotNil(t, cfg.Tools())
	assert.Equal(t, 0, cfg.Tools().Len())
}
