package document

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	EncodingUTF8        = "utf-8"
	EncodingLatin1      = "iso-8859-1"
	EncodingWindows1252 = "windows-1252"
	EncodingReplaced    = "utf-8-replaced"
)

// DecodeText converts raw bytes into UTF-8, trying UTF-8, Latin-1,
// Windows-1252 and finally UTF-8 with invalid sequences replaced. It returns
// the text and the encoding that was used.
//
// Latin-1 maps every byte, so it is only accepted when the result has no C1
// control characters; those bytes are printable in Windows-1252.
func DecodeText(data []byte) (string, string) {
	if utf8.Valid(data) {
		return string(data), EncodingUTF8
	}

	if text, err := charmap.ISO8859_1.NewDecoder().Bytes(data); err == nil && !hasC1(text) {
		return string(text), EncodingLatin1
	}

	if text, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil && !strings.ContainsRune(string(text), utf8.RuneError) {
		return string(text), EncodingWindows1252
	}

	return strings.ToValidUTF8(string(data), "�"), EncodingReplaced
}

func hasC1(text []byte) bool {
	for _, r := range string(text) {
		if r >= 0x80 && r <= 0x9f {
			return true
		}
	}
	return false
}
