package logs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeParamsMasksDefaultFields(t *testing.T) {
	params := map[string]any{
		"password": "secret-value",
		"token":    "abcd1234",
		"secret":   "shh",
		"page":     "2",
	}
	out := SanitizeParams(DefaultMasker(), params)
	require.NotEqual(t, "secret-value", out["password"])
	require.NotEqual(t, "abcd1234", out["token"])
	require.NotEqual(t, "shh", out["secret"])
	require.Equal(t, "2", out["page"])
	require.Equal(t, "secret-value", params["password"], "input is not mutated")
}

func TestSanitizeParamsEmpty(t *testing.T) {
	require.Nil(t, SanitizeParams(nil, nil))
	require.Empty(t, SanitizeParams(nil, map[string]any{}))
}
