package engine

// Framer tracks object/array nesting for decoders whose token streams do not
// distinguish object keys from string values (encoding/json, go-json). Drivers
// feed every decoded token through it and get engine Tokens back.
type Framer struct {
	stack []framerFrame
}

type framerFrame struct {
	object       bool
	expectingKey bool
}

// Begin opens an object (object=true) or array container.
func (f *Framer) Begin(object bool, off int64) Token {
	f.stack = append(f.stack, framerFrame{object: object, expectingKey: object})
	if object {
		return Token{Kind: KindBeginObject, Offset: off}
	}
	return Token{Kind: KindBeginArray, Offset: off}
}

// End closes the innermost container.
func (f *Framer) End(object bool, off int64) Token {
	if n := len(f.stack); n > 0 {
		f.stack = f.stack[:n-1]
	}
	f.valueDone()
	if object {
		return Token{Kind: KindEndObject, Offset: off}
	}
	return Token{Kind: KindEndArray, Offset: off}
}

// String classifies a decoded string as either a key or a string value.
func (f *Framer) String(s string, off int64) Token {
	if n := len(f.stack); n > 0 {
		top := &f.stack[n-1]
		if top.object && top.expectingKey {
			top.expectingKey = false
			return Token{Kind: KindKey, String: s, Offset: off}
		}
	}
	f.valueDone()
	return Token{Kind: KindString, String: s, Offset: off}
}

// Scalar records a non-string scalar value and returns tok unchanged.
func (f *Framer) Scalar(tok Token) Token {
	f.valueDone()
	return tok
}

func (f *Framer) valueDone() {
	if n := len(f.stack); n > 0 {
		top := &f.stack[n-1]
		if top.object && !top.expectingKey {
			top.expectingKey = true
		}
	}
}
