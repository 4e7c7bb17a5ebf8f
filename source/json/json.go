package json

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	eng "github.com/reoring/skema/internal/engine"
)

type jsonSource struct {
	dec        *json.Decoder
	fr         eng.Framer
	lastOffset int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec, lastOffset: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *jsonSource) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	off := s.dec.InputOffset()
	s.lastOffset = off

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return s.fr.Begin(true, off), nil
		case '}':
			return s.fr.End(true, off), nil
		case '[':
			return s.fr.Begin(false, off), nil
		default:
			return s.fr.End(false, off), nil
		}
	case string:
		return s.fr.String(v, off), nil
	case bool:
		return s.fr.Scalar(eng.Token{Kind: eng.KindBool, Bool: v, Offset: off}), nil
	case json.Number:
		return s.fr.Scalar(eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: off}), nil
	case float64:
		return s.fr.Scalar(eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: off}), nil
	}
	return s.fr.Scalar(eng.Token{Kind: eng.KindNull, Offset: off}), nil
}

func (s *jsonSource) Location() int64 { return s.lastOffset }
