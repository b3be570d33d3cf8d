package source

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/groundwater-portal/reportload/pkg/reportload"
)

// Options controls how files are parsed.
type Options struct {
	// Delimiter separates CSV fields. Defaults to ','.
	Delimiter rune

	// Encoding names the character encoding of CSV files ("utf-8" when empty).
	Encoding string

	// NAValues are the cell texts read as missing values.
	NAValues []string

	// Sheet selects the worksheet of workbook inputs; the first sheet when empty.
	Sheet string
}

// DefaultOptions returns comma-separated UTF-8 with the default NA tokens.
func DefaultOptions() Options {
	return Options{
		Delimiter: ',',
		NAValues:  append([]string(nil), reportload.DefaultNAValues...),
	}
}

// lookupEncoding resolves an encoding name. A nil encoding means UTF-8
// and needs no decoding.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "cp1252", "windows-1252":
		return charmap.Windows1252, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, reportload.ErrInvalidConfig)
	}
	return enc, nil
}

// ValidateEncoding reports whether name is a known encoding.
func ValidateEncoding(name string) error {
	_, err := lookupEncoding(name)
	return err
}

func naSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
