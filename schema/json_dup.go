package schema

import (
	"bytes"
	"errors"
	"io"

	json "github.com/goccy/go-json"
)

type frameKind int

const (
	frameObject frameKind = iota
	frameArray
)

type dupFrame struct {
	kind         frameKind
	keys         map[string]struct{}
	expectingKey bool
}

// detectJSONDuplicateKey walks the token stream of a JSON document and
// returns a *DuplicateKeyError for the first key repeated within one object.
// Malformed input is left for the decoder to report.
func detectJSONDuplicateKey(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var stack []dupFrame
	valueDone := func() {
		if n := len(stack); n > 0 {
			top := &stack[n-1]
			if top.kind == frameObject && !top.expectingKey {
				top.expectingKey = true
			}
		}
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return nil
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, dupFrame{kind: frameObject, keys: make(map[string]struct{}), expectingKey: true})
			case '[':
				stack = append(stack, dupFrame{kind: frameArray})
			case '}', ']':
				if n := len(stack); n > 0 {
					stack = stack[:n-1]
				}
				valueDone()
			}
		case string:
			if n := len(stack); n > 0 {
				top := &stack[n-1]
				if top.kind == frameObject && top.expectingKey {
					if _, dup := top.keys[v]; dup {
						return &DuplicateKeyError{Key: v}
					}
					top.keys[v] = struct{}{}
					top.expectingKey = false
					continue
				}
			}
			valueDone()
		default:
			valueDone()
		}
	}
}
