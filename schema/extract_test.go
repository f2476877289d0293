package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weatherDescriptor() *Descriptor {
	return NewDescriptor().
		Field("city", TypeString, "City").
		Field("temperature", TypeNumber, "Celsius").
		Field("sunny", TypeBoolean, "").
		Field("alerts", TypeStringList, "")
}

func TestExtract_PayloadForms(t *testing.T) {
	text := `{"city":"Tokyo","temperature":22.5,"sunny":true,"alerts":["typhoon"]}`
	payloads := map[string]any{
		"string":      text,
		"bytes":       []byte(text),
		"raw message": json.RawMessage(text),
		"decoded map": map[string]any{
			"city":        "Tokyo",
			"temperature": 22.5,
			"sunny":       true,
			"alerts":      []any{"typhoon"},
		},
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			got, err := Extract(payload, weatherDescriptor())
			require.NoError(t, err)
			assert.Equal(t, map[string]any{
				"city":        "Tokyo",
				"temperature": 22.5,
				"sunny":       true,
				"alerts":      []string{"typhoon"},
			}, got)
		})
	}
}

func TestExtract_FirstFailureInDeclarationOrder(t *testing.T) {
	// Both city and temperature are wrong; city is declared first.
	payload := map[string]any{
		"city":        42,
		"temperature": "hot",
		"sunny":       true,
		"alerts":      []any{},
	}

	_, err := Extract(payload, weatherDescriptor())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "city", verr.Field)
	assert.Equal(t, "expected string, got number", verr.Reason)
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		field   string
		reason  string
	}{
		{
			name: "missing field",
			payload: map[string]any{
				"city": "Tokyo", "temperature": 22.5, "sunny": true,
			},
			field:  "alerts",
			reason: "missing",
		},
		{
			name: "number mismatch",
			payload: map[string]any{
				"city": "Tokyo", "temperature": "hot", "sunny": true, "alerts": []any{},
			},
			field:  "temperature",
			reason: "expected number, got string",
		},
		{
			name: "boolean mismatch",
			payload: map[string]any{
				"city": "Tokyo", "temperature": 22.5, "sunny": "yes", "alerts": []any{},
			},
			field:  "sunny",
			reason: "expected boolean, got string",
		},
		{
			name: "list element mismatch",
			payload: map[string]any{
				"city": "Tokyo", "temperature": 22.5, "sunny": true,
				"alerts": []any{"typhoon", 7},
			},
			field:  "alerts",
			reason: "expected string[], element 1 is number",
		},
		{
			name: "list mismatch",
			payload: map[string]any{
				"city": "Tokyo", "temperature": 22.5, "sunny": true, "alerts": "none",
			},
			field:  "alerts",
			reason: "expected string[], got string",
		},
		{
			name: "null value",
			payload: map[string]any{
				"city": nil, "temperature": 22.5, "sunny": true, "alerts": []any{},
			},
			field:  "city",
			reason: "expected string, got null",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Extract(tc.payload, weatherDescriptor())
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, tc.reason, verr.Reason)
		})
	}
}

func TestExtract_FieldNamesAreCaseSensitive(t *testing.T) {
	d := NewDescriptor().Field("city", TypeString, "")

	_, err := Extract(map[string]any{"City": "Tokyo"}, d)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "city", verr.Field)
	assert.Equal(t, "missing", verr.Reason)
}

func TestExtract_ExtraFieldsIgnored(t *testing.T) {
	d := NewDescriptor().Field("city", TypeString, "")

	got, err := Extract(map[string]any{"city": "Tokyo", "country": "Japan"}, d)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"city": "Tokyo"}, got)
}

func TestExtract_IntegerNormalizedToFloat(t *testing.T) {
	d := NewDescriptor().Field("count", TypeNumber, "")

	got, err := Extract(map[string]any{"count": 3}, d)
	require.NoError(t, err)
	assert.Equal(t, float64(3), got["count"])
}

func TestExtract_NotAnObject(t *testing.T) {
	d := NewDescriptor().Field("city", TypeString, "")

	_, err := Extract(`["not","an","object"]`, d)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "payload is not a JSON object")

	_, err = Extract(42, d)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "unsupported payload type")
}
