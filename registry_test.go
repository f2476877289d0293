package reagent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ejhollis/reagent/schema"
)

func noopHandler(ctx context.Context, args map[string]any) (string, error) {
	return "ok", nil
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(NewTool("alpha", "first tool", nil, noopHandler)))
	require.NoError(t, r.Register(NewTool("beta", "second tool", nil, noopHandler)))

	alpha, err := r.Resolve("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", alpha.Name())

	beta, err := r.Resolve("beta")
	require.NoError(t, err)
	assert.Equal(t, "beta", beta.Name())
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewTool("alpha", "first", nil, noopHandler)))

	err := r.Register(NewTool("alpha", "imposter", nil, noopHandler))

	var dup *DuplicateToolError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "alpha", dup.Name)

	// The original registration is untouched.
	def, resolveErr := r.Resolve("alpha")
	require.NoError(t, resolveErr)
	assert.Equal(t, "first", def.Description())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("ghost")

	var unknown *UnknownToolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "ghost", unknown.Name)
}

func TestRegistry_ListInsertionOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"charlie", "alpha", "beta"} {
		require.NoError(t, r.Register(NewTool(name, name, nil, noopHandler)))
	}

	var names []string
	for _, def := range r.List() {
		names = append(names, def.Name())
	}
	assert.Equal(t, []string{"charlie", "alpha", "beta"}, names)
}

func TestRegistry_RegisterNil(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(NewTool("", "nameless", nil, noopHandler)))
}

func TestRegistry_CompilesParameterSchema(t *testing.T) {
	r := NewRegistry()
	params := schema.NewDescriptor().
		Field("city", schema.TypeString, "City name")
	require.NoError(t, r.Register(NewTool("get_weather", "weather", params, noopHandler)))
	require.NoError(t, r.Register(NewTool("ping", "no params", nil, noopHandler)))

	v := r.validator("get_weather")
	require.NotNil(t, v)
	assert.NoError(t, v.Validate(map[string]any{"city": "Tokyo"}))
	assert.Error(t, v.Validate(map[string]any{"city": 42}))

	assert.Nil(t, r.validator("ping"))
}
