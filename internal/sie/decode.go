package sie

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Decode turns raw SIE file bytes into text. Real-world SIE files are a mix
// of legacy CP437 exporters and modern UTF-8 exporters with no reliable
// signal other than content inspection, so detection is three-tiered:
//
//  1. strict UTF-8 that contains a '#' is accepted unchanged (the common
//     modern case),
//  2. otherwise a raw-byte scan for "#FORMAT <value>" decides: any value
//     other than PC8 means ISO-8859-1,
//  3. otherwise (format absent or PC8) the stream is CP437.
//
// A pure-ASCII file produced by a CP437 exporter is valid UTF-8 and cannot
// be told apart; both decodings agree on ASCII so the ambiguity is harmless
// and deliberately left in place.
func Decode(b []byte) string {
	if utf8.Valid(b) && bytes.IndexByte(b, '#') >= 0 {
		return string(b)
	}
	if v, ok := scanFormat(b); ok && !strings.EqualFold(v, "PC8") {
		return decodeLatin1(b)
	}
	return decodeCP437(b)
}

// scanFormat looks for the ASCII tag "#FORMAT" in the undecoded byte stream
// and returns the value following it. Byte-literal matching is required here
// because the encoding is not yet known; the tag and its value are ASCII in
// every encoding SIE uses.
func scanFormat(b []byte) (string, bool) {
	tag := []byte("#FORMAT")
	i := bytes.Index(b, tag)
	if i < 0 {
		return "", false
	}
	rest := b[i+len(tag):]
	j := 0
	for j < len(rest) && (rest[j] == ' ' || rest[j] == '\t') {
		j++
	}
	k := j
	for k < len(rest) && rest[k] != ' ' && rest[k] != '\t' && rest[k] != '\r' && rest[k] != '\n' {
		k++
	}
	if k == j {
		return "", false
	}
	return string(rest[j:k]), true
}
