package yaml_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	eng "github.com/reoring/skema/internal/engine"
	"github.com/reoring/skema/source/yaml"
)

func decode(t *testing.T, doc string, opt eng.DecodeOptions) any {
	t.Helper()
	v, err := eng.DecodeAnyFromSource(yaml.NewBytes([]byte(doc)), opt)
	require.NoError(t, err)
	return v
}

func TestMappingOrder(t *testing.T) {
	v := decode(t, "zeta: 1\nalpha: two\nmid: [true, null, 1.5]\n", eng.DecodeOptions{Ordered: true})
	om, ok := v.(*orderedmap.OrderedMap[string, any])
	require.True(t, ok, "%T", v)
	var keys []string
	for p := om.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)
	mid, _ := om.Get("mid")
	assert.Equal(t, []any{true, nil, json.Number("1.5")}, mid)
}

func TestAliases(t *testing.T) {
	v := decode(t, "base: &b {name: x, port: 80}\ncopy: *b\nlist: [*b]\n", eng.DecodeOptions{})
	m := v.(map[string]any)
	want := map[string]any{"name": "x", "port": json.Number("80")}
	assert.Equal(t, want, m["base"])
	assert.Equal(t, want, m["copy"])
	assert.Equal(t, []any{want}, m["list"])
}

func TestEmptyDocument(t *testing.T) {
	v, err := eng.DecodeAnyFromSource(yaml.NewBytes(nil), eng.DecodeOptions{})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestFirstDocumentOnly(t *testing.T) {
	v := decode(t, "a: 1\n---\nb: 2\n", eng.DecodeOptions{})
	assert.Equal(t, map[string]any{"a": json.Number("1")}, v)
}

func TestErrors(t *testing.T) {
	cases := map[string]string{
		"syntax":        "a: [1,\n",
		"composite key": "? [a, b]\n: 1\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := eng.DecodeAnyFromSource(yaml.NewBytes([]byte(doc)), eng.DecodeOptions{})
			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), "yaml: "), err.Error())
		})
	}
	_, err := eng.DecodeAnyFromSource(yaml.NewBytes([]byte("? [a]\n: 1\n")), eng.DecodeOptions{})
	assert.ErrorContains(t, err, "mapping key must be a scalar")
}
