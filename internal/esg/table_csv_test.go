package esg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"syndicateiq/internal/models"
)

func TestLoadTablesCSV(t *testing.T) {
	src := "\xef\xbb\xbfcategory;keyword;points\n" +
		"environmental;tidal power;30\n" +
		"governance;Sanctions screening;25\n" +
		"\n" +
		"environmental;reforestation;15\n"

	tables, err := LoadTablesCSV(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	if tables[0].Category != models.CategoryEnvironmental || len(tables[0].Keywords) != 2 {
		t.Fatalf("unexpected first table: %+v", tables[0])
	}

	res := NewScorer(tables...).Score("Tidal power and SANCTIONS SCREENING programme")
	if res.Environmental != 30 || res.Governance != 25 || res.TotalScore != 55 {
		t.Fatalf("unexpected scores: %+v", res)
	}
}

func TestLoadTablesCSV_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":            "",
		"header only":      "category,keyword,points\n",
		"unknown category": "financial,leverage,10\n",
		"bad points":       "social,diversity,10\nsocial,inclusion,lots\n",
		"short row":        "social,diversity\n",
		"zero points":      "social,diversity,0\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadTablesCSV(strings.NewReader(src)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadTablesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.csv")
	if err := os.WriteFile(path, []byte("social,microfinance,20\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	tables, err := LoadTablesFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 1 || tables[0].Keywords[0].Phrase != "microfinance" {
		t.Fatalf("unexpected tables: %+v", tables)
	}

	if _, err := LoadTablesFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
