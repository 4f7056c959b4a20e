// internal/fileparser/encoding.go
package fileparser

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// decodeText converts raw file bytes to a UTF-8 string according to the
// requested encoding. An empty name means UTF-8; a UTF-8 BOM is
// stripped either way.
func decodeText(data []byte, name string) (string, error) {
	var enc encoding.Encoding

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		text := string(data)
		return strings.TrimPrefix(text, "\ufeff"), nil
	case "latin-1", "latin1", "iso-8859-1":
		enc = charmap.ISO8859_1
	case "iso-8859-9", "latin-5", "turkish":
		enc = charmap.ISO8859_9
	case "windows-1254", "cp1254":
		enc = charmap.Windows1254
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	case "utf-16", "utf-16le":
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "utf-16be":
		enc = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	default:
		return "", fmt.Errorf("unsupported encoding: %q", name)
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s content: %w", name, err)
	}
	return string(decoded), nil
}
