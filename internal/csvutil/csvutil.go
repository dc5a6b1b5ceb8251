// Package csvutil encodes ledger rows and decodes just enough of one to
// read its primary-key column. It is not a general CSV parser.
package csvutil

import "strings"

// EncodeRow joins fields with commas, quoting any field that contains a
// delimiter, quote, or line break. Inner quotes are doubled.
func EncodeRow(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		if strings.ContainsAny(f, ",\"\r\n") {
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(f, `"`, `""`))
			b.WriteByte('"')
		} else {
			b.WriteString(f)
		}
	}
	return b.String()
}

// DecodeFirstField returns the first field of an encoded row, with one layer
// of surrounding quotes stripped and doubled quotes collapsed. The key column
// is a short opaque id, so embedded delimiters inside it are not a concern.
func DecodeFirstField(row string) string {
	if row == "" {
		return ""
	}
	if row[0] != '"' {
		if i := strings.IndexByte(row, ','); i >= 0 {
			return row[:i]
		}
		return strings.TrimRight(row, "\r\n")
	}
	// Quoted field: scan for the closing quote, honoring doubled quotes.
	var b strings.Builder
	for i := 1; i < len(row); i++ {
		if row[i] != '"' {
			b.WriteByte(row[i])
			continue
		}
		if i+1 < len(row) && row[i+1] == '"' {
			b.WriteByte('"')
			i++
			continue
		}
		break
	}
	return b.String()
}
