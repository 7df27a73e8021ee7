package esg

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"syndicateiq/internal/models"
)

// LoadTablesFile reads keyword tables from a CSV file. See LoadTablesCSV.
func LoadTablesFile(path string) ([]Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening keyword file: %w", err)
	}
	defer f.Close()
	return LoadTablesCSV(f)
}

// LoadTablesCSV parses rows of "category,keyword,points". A header row is
// optional, ';' separators and a UTF-8 BOM are accepted. Categories keep the
// order of their first appearance.
func LoadTablesCSV(r io.Reader) ([]Table, error) {
	reader, err := newRobustCSVReader(r)
	if err != nil {
		return nil, err
	}

	var tables []Table
	index := map[models.ESGCategory]int{}
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("line %d: expected category, keyword, points", line)
		}

		cat := models.ESGCategory(strings.ToLower(strings.TrimSpace(record[0])))
		phrase := strings.TrimSpace(record[1])
		points, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if err != nil {
			if line == 1 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: invalid points %q", line, record[2])
		}

		switch cat {
		case models.CategoryEnvironmental, models.CategorySocial, models.CategoryGovernance:
		default:
			return nil, fmt.Errorf("line %d: unknown category %q", line, record[0])
		}
		if phrase == "" || points <= 0 {
			return nil, fmt.Errorf("line %d: keyword and positive points required", line)
		}

		i, ok := index[cat]
		if !ok {
			i = len(tables)
			index[cat] = i
			tables = append(tables, Table{Category: cat})
		}
		tables[i].Keywords = append(tables[i].Keywords, Keyword{Phrase: phrase, Points: points})
	}

	if len(tables) == 0 {
		return nil, errors.New("keyword file contains no keywords")
	}
	return tables, nil
}

// newRobustCSVReader strips a BOM, detects ';' vs ',' and tolerates loose quoting.
func newRobustCSVReader(r io.Reader) (*csv.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	firstLine := data
	if end := bytes.IndexByte(data, '\n'); end >= 0 {
		firstLine = data[:end]
	}
	comma := ','
	if !bytes.Contains(firstLine, []byte(",")) && bytes.Contains(firstLine, []byte(";")) {
		comma = ';'
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader, nil
}
