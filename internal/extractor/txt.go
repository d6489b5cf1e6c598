package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ExtractTXT decodes a plain text file. UTF-8 (optionally BOM-prefixed) and
// BOM-marked UTF-16 are accepted; anything else fails with ErrEncoding.
func ExtractTXT(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}

	text, err := decodeText(data)
	if err != nil {
		return "", err
	}

	text = cleanText(text)

	if text == "" {
		return "", ErrEmptyDocument
	}

	return text, nil
}

func decodeText(data []byte) (string, error) {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	} else if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		return string(decoded), nil
	} else if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		decoder := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		return string(decoded), nil
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: file is not valid UTF-8", ErrEncoding)
	}

	return string(data), nil
}

func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")

	lines := strings.Split(text, "\n")

	var cleanedLines []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
