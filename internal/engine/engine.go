package engine

import (
	"encoding/json"
	"io"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// DecodeOptions selects the shape of the decoded tree.
type DecodeOptions struct {
	// Float64 decodes numbers as float64 instead of json.Number.
	Float64 bool
	// Ordered decodes objects into *orderedmap.OrderedMap[string, any]
	// instead of map[string]any.
	Ordered bool
}

// DecodeAnyFromSource builds an "any" value from the streaming token source.
func DecodeAnyFromSource(src TokenSource, opt DecodeOptions) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	d := decoder{src: src, opt: opt}
	return d.value(tok)
}

type decoder struct {
	src TokenSource
	opt DecodeOptions
}

func (d decoder) value(tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return d.object()
	case KindBeginArray:
		return d.array()
	case KindString:
		return tok.String, nil
	case KindNumber:
		if d.opt.Float64 {
			return strconv.ParseFloat(tok.Number, 64)
		}
		return json.Number(tok.Number), nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func (d decoder) object() (any, error) {
	var (
		m  map[string]any
		om *orderedmap.OrderedMap[string, any]
	)
	if d.opt.Ordered {
		om = orderedmap.New[string, any]()
	} else {
		m = make(map[string]any)
	}
	for {
		tok, err := d.src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			if om != nil {
				return om, nil
			}
			return m, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := d.src.NextToken()
		if err != nil {
			return nil, err
		}
		v, err := d.value(vt)
		if err != nil {
			return nil, err
		}
		if om != nil {
			om.Set(tok.String, v)
		} else {
			m[tok.String] = v
		}
	}
}

func (d decoder) array() (any, error) {
	arr := []any{}
	for {
		tok, err := d.src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := d.value(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
