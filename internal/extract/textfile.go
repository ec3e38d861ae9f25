package extract

import (
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeText interprets raw bytes as UTF-8, falling back to Latin-1 when
// the bytes are not valid UTF-8. Latin-1 maps every byte, so the result
// is always a valid string even for binary-ish input.
func DecodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// ReadTextFile reads a file as text with the DecodeText fallback chain.
func ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return DecodeText(data), nil
}
