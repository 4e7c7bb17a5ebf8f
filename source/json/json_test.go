package json_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eng "github.com/reoring/skema/internal/engine"
	jsonsrc "github.com/reoring/skema/source/json"
)

func TestTokens(t *testing.T) {
	src := jsonsrc.NewBytes([]byte(`{"k":"v","n":1.5e3,"b":false,"z":null}`))
	var kinds []eng.Kind
	var last int64 = -1
	for {
		tok, err := src.NextToken()
		if err != nil {
			break
		}
		kinds = append(kinds, tok.Kind)
		assert.Equal(t, tok.Offset, src.Location())
		assert.Greater(t, tok.Offset, last)
		last = tok.Offset
		if tok.Kind == eng.KindNumber {
			assert.Equal(t, "1.5e3", tok.Number)
		}
	}
	assert.Equal(t, []eng.Kind{
		eng.KindBeginObject,
		eng.KindKey, eng.KindString,
		eng.KindKey, eng.KindNumber,
		eng.KindKey, eng.KindBool,
		eng.KindKey, eng.KindNull,
		eng.KindEndObject,
	}, kinds)
}

func TestLocation_BeforeFirstToken(t *testing.T) {
	assert.Equal(t, int64(-1), jsonsrc.NewBytes([]byte(`1`)).Location())
}

func TestDecode_KeepsNumberText(t *testing.T) {
	v, err := eng.DecodeAnyFromSource(jsonsrc.NewBytes([]byte(`[12345678901234567890, 0.1]`)), eng.DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("12345678901234567890"), json.Number("0.1")}, v)
}
