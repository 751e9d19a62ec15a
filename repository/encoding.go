package repository

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"meterdata-pipeline/config"
	"meterdata-pipeline/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var errRejected = errors.New("table rejected")

type decodedTable struct {
	models.RawTable
	SkippedLines int
}

func encodingByName(name string) encoding.Encoding {
	switch name {
	case "utf-8-sig":
		return unicode.UTF8BOM
	case "iso-8859-2":
		return charmap.ISO8859_2
	case "cp1250":
		return charmap.Windows1250
	case "latin1":
		return charmap.ISO8859_1
	}
	return nil
}

//decodeTable tries every configured encoding in order and returns the first acceptable table
func decodeTable(data []byte) (decodedTable, error) {
	for _, name := range config.GetInputEncodings() {
		text, ok := decodeText(data, name)
		if !ok {
			continue
		}
		table, err := parseTable(text)
		if err != nil {
			continue
		}
		table.Encoding = name
		return table, nil
	}
	return decodedTable{}, ErrUnreadable
}

//decodeText converts data to UTF-8. Bytes undefined in the target code page reject the encoding.
func decodeText(data []byte, name string) (string, bool) {
	enc := encodingByName(name)
	if enc == nil {
		return "", false
	}
	if name == "utf-8-sig" && !utf8.Valid(bytes.TrimPrefix(data, utf8BOM)) {
		return "", false
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", false
	}
	text := string(decoded)
	if name != "utf-8-sig" && strings.ContainsRune(text, utf8.RuneError) {
		return "", false
	}
	return strings.TrimPrefix(text, "\ufeff"), true
}

//parseTable parses semicolon separated text. Lines with more fields than the header are skipped,
//shorter lines are padded with empty fields.
func parseTable(text string) (decodedTable, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = config.GetCSVDelimiter()
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var table decodedTable
	header, err := reader.Read()
	if err != nil {
		return table, err
	}
	for n := range header {
		header[n] = strings.TrimSpace(header[n])
	}
	table.Header = header

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table, err
		}
		if isBlank(record) {
			continue
		}
		if len(record) > len(header) {
			table.SkippedLines++
			continue
		}
		for len(record) < len(header) {
			record = append(record, "")
		}
		table.Rows = append(table.Rows, record)
	}

	if len(table.Rows) == 0 || len(table.Header) <= config.GetMinInputColumns() {
		return table, errRejected
	}
	return table, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
