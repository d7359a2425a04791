package workflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errNotObject = errors.New("expected JSON object")

// decodeObject walks the members of a JSON object in document order.
// A JSON null is treated as an empty object.
func decodeObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errNotObject
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// objectWriter emits a JSON object with members in call order.
type objectWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func newObjectWriter() *objectWriter {
	ow := &objectWriter{}
	ow.buf.WriteByte('{')
	return ow
}

func (ow *objectWriter) field(key string, v any) {
	if ow.err != nil {
		return
	}
	val, err := json.Marshal(v)
	if err != nil {
		ow.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	ow.raw(key, val)
}

func (ow *objectWriter) raw(key string, val []byte) {
	if ow.n > 0 {
		ow.buf.WriteByte(',')
	}
	k, _ := json.Marshal(key)
	ow.buf.Write(k)
	ow.buf.WriteByte(':')
	ow.buf.Write(val)
	ow.n++
}

func (ow *objectWriter) extra(fields []Field) {
	for _, f := range fields {
		if ow.err != nil {
			return
		}
		if len(f.Value) == 0 {
			ow.raw(f.Key, []byte("null"))
			continue
		}
		ow.raw(f.Key, f.Value)
	}
}

func (ow *objectWriter) bytes() ([]byte, error) {
	if ow.err != nil {
		return nil, ow.err
	}
	ow.buf.WriteByte('}')
	return ow.buf.Bytes(), nil
}
