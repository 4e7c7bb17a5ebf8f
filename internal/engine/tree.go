package engine

import (
	"fmt"
	"io"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// NewTreeSource replays an already decoded value tree as tokens. It lets
// formats that decode in one shot (YAML, TOML) share the enforcement and
// decoding path of the streaming JSON sources. Plain map keys are emitted in
// sorted order; ordered maps keep their insertion order. time.Time values are
// emitted as RFC 3339 strings.
func NewTreeSource(v any) TokenSource {
	t := &treeSource{}
	t.emit(v)
	return t
}

// NewErrorSource returns a TokenSource that fails with err on first use.
func NewErrorSource(err error) TokenSource { return &treeSource{err: err} }

type treeSource struct {
	toks []Token
	pos  int
	err  error
}

func (t *treeSource) NextToken() (Token, error) {
	if t.err != nil {
		return Token{}, t.err
	}
	if t.pos >= len(t.toks) {
		return Token{}, io.EOF
	}
	tok := t.toks[t.pos]
	t.pos++
	return tok, nil
}

func (t *treeSource) Location() int64 { return -1 }

func (t *treeSource) push(tok Token) {
	tok.Offset = -1
	t.toks = append(t.toks, tok)
}

func (t *treeSource) emit(v any) {
	if t.err != nil {
		return
	}
	switch x := v.(type) {
	case nil:
		t.push(Token{Kind: KindNull})
	case string:
		t.push(Token{Kind: KindString, String: x})
	case bool:
		t.push(Token{Kind: KindBool, Bool: x})
	case int:
		t.push(Token{Kind: KindNumber, Number: strconv.Itoa(x)})
	case int64:
		t.push(Token{Kind: KindNumber, Number: strconv.FormatInt(x, 10)})
	case uint64:
		t.push(Token{Kind: KindNumber, Number: strconv.FormatUint(x, 10)})
	case float64:
		t.push(Token{Kind: KindNumber, Number: strconv.FormatFloat(x, 'g', -1, 64)})
	case *big.Int:
		t.push(Token{Kind: KindNumber, Number: x.String()})
	case time.Time:
		t.push(Token{Kind: KindString, String: x.Format(time.RFC3339Nano)})
	case *orderedmap.OrderedMap[string, any]:
		t.push(Token{Kind: KindBeginObject})
		for p := x.Oldest(); p != nil; p = p.Next() {
			t.push(Token{Kind: KindKey, String: p.Key})
			t.emit(p.Value)
		}
		t.push(Token{Kind: KindEndObject})
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		t.push(Token{Kind: KindBeginObject})
		for _, k := range keys {
			t.push(Token{Kind: KindKey, String: k})
			t.emit(x[k])
		}
		t.push(Token{Kind: KindEndObject})
	case []any:
		t.push(Token{Kind: KindBeginArray})
		for _, e := range x {
			t.emit(e)
		}
		t.push(Token{Kind: KindEndArray})
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice {
			t.push(Token{Kind: KindBeginArray})
			for i := 0; i < rv.Len(); i++ {
				t.emit(rv.Index(i).Interface())
			}
			t.push(Token{Kind: KindEndArray})
			return
		}
		t.err = fmt.Errorf("skema: unsupported decoded value %T", v)
	}
}
