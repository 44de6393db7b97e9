package stream

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// syntaxEncodings maps EDIFACT syntax identifiers (UNB S001/0001) to the
// character encodings they imply.
var syntaxEncodings = map[string]encoding.Encoding{
	"UNOA": unicode.UTF8, // ASCII subsets
	"UNOB": unicode.UTF8,
	"UNOC": charmap.ISO8859_1,
	"UNOD": charmap.ISO8859_2,
	"UNOE": charmap.ISO8859_5,
	"UNOF": charmap.ISO8859_7,
	"UNOG": charmap.ISO8859_3,
	"UNOH": charmap.ISO8859_4,
	"UNOI": charmap.ISO8859_6,
	"UNOJ": charmap.ISO8859_8,
	"UNOK": charmap.ISO8859_9,
	"UNOW": unicode.UTF8,
	"UNOY": unicode.UTF8,
}

// lookupEncoding resolves an EDIFACT syntax identifier or an IANA charset
// name.
func lookupEncoding(name string) (encoding.Encoding, error) {
	if enc, ok := syntaxEncodings[strings.ToUpper(name)]; ok {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("stream: unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("stream: unsupported encoding %q", name)
	}
	return enc, nil
}

// sniffLimit bounds how far into the input the UNB header is searched for.
const sniffLimit = 512

// sniffSyntaxIdentifier looks for the UNB syntax identifier in the first
// bytes of br without consuming them. All EDIFACT repertoires share ASCII for
// the service segments, so the raw bytes can be inspected before decoding.
func sniffSyntaxIdentifier(br *bufio.Reader) string {
	prefix, _ := br.Peek(sniffLimit)
	i := bytes.Index(prefix, []byte("UNB"))
	if i < 0 || len(prefix) < i+8 {
		return ""
	}
	id := string(prefix[i+4 : i+8])
	if !strings.HasPrefix(id, "UNO") {
		return ""
	}
	return id
}
