package gojson

import (
	"bytes"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	"github.com/reoring/skema"
	eng "github.com/reoring/skema/internal/engine"
)

// Driver returns a skema.JSONDriver backed by goccy/go-json.
func Driver() skema.JSONDriver { return driverGoJSON{} }

type driverGoJSON struct{}

func (driverGoJSON) NewReader(r io.Reader) skema.Source {
	return skema.SourceFromEngine(NewReader(r), skema.NumberJSONNumber)
}
func (driverGoJSON) NewBytes(b []byte) skema.Source {
	return skema.SourceFromEngine(NewBytes(b), skema.NumberJSONNumber)
}
func (driverGoJSON) Name() string { return "go-json" }

// ---- engine.TokenSource implementation using go-json Decoder ----

type source struct {
	dec *j.Decoder
	fr  eng.Framer
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using go-json.
func NewReader(r io.Reader) eng.TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			return s.fr.Begin(true, -1), nil
		case '}':
			return s.fr.End(true, -1), nil
		case '[':
			return s.fr.Begin(false, -1), nil
		default:
			return s.fr.End(false, -1), nil
		}
	case string:
		return s.fr.String(v, -1), nil
	case bool:
		return s.fr.Scalar(eng.Token{Kind: eng.KindBool, Bool: v, Offset: -1}), nil
	case j.Number:
		return s.fr.Scalar(eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: -1}), nil
	case float64:
		return s.fr.Scalar(eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: -1}), nil
	}
	return s.fr.Scalar(eng.Token{Kind: eng.KindNull, Offset: -1}), nil
}

// go-json's Decoder does not expose input offsets.
func (s *source) Location() int64 { return -1 }
