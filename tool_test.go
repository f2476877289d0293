package reagent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ejhollis/reagent/schema"
)

func TestNewTool(t *testing.T) {
	params := schema.NewDescriptor().Field("city", schema.TypeString, "City name")
	tool := NewTool("get_weather", "Get the weather", params,
		func(ctx context.Context, args map[string]any) (string, error) {
			return "Sunny", nil
		})

	assert.Equal(t, "get_weather", tool.Name())
	assert.Equal(t, "Get the weather", tool.Description())
	assert.Same(t, params, tool.Parameters())

	raw := tool.ParameterSchema()
	require.NotNil(t, raw)
	assert.Equal(t, "object", raw["type"])

	out, err := tool.Call(context.Background(), map[string]any{"city": "Tokyo"})
	require.NoError(t, err)
	assert.Equal(t, "Sunny", out)
}

func TestTool_CallWrapsHandlerError(t *testing.T) {
	cause := errors.New("backend down")
	tool := NewTool("flaky", "fails", nil,
		func(ctx context.Context, args map[string]any) (string, error) {
			return "", cause
		})

	_, err := tool.Call(context.Background(), nil)
	var terr *ToolExecutionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "flaky", terr.Tool)
	assert.ErrorIs(t, err, cause)
}

func TestTool_NilParameterSchema(t *testing.T) {
	tool := NewTool("ping", "no args", nil,
		func(ctx context.Context, args map[string]any) (string, error) {
			return "pong", nil
		})

	assert.Nil(t, tool.Parameters())
	assert.Nil(t, tool.ParameterSchema())
}
