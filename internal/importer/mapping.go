package importer

import "strings"

// ColumnMapping assigns table columns to the semantic fields of an expense.
// A value of -1 means unmapped.
type ColumnMapping struct {
	Amount      int
	Date        int
	Category    int
	Description int
}

// Keyword hints for auto-mapping, matched as substrings of lower-cased
// column names. English and Polish headers are both recognized.
var fieldHints = map[string][]string{
	"amount":      {"amount", "kwota", "value", "wartość", "suma", "price", "cena"},
	"date":        {"date", "data"},
	"category":    {"category", "kategoria"},
	"description": {"description", "opis", "desc", "title", "tytuł", "note"},
}

// AutoMap guesses a column mapping from header names. For each semantic
// field the first column whose lower-cased name contains any hint wins.
// The result is advisory and user-overridable before execution.
func AutoMap(columns []string) ColumnMapping {
	mapping := ColumnMapping{Amount: -1, Date: -1, Category: -1, Description: -1}

	find := func(field string) int {
		for i, col := range columns {
			name := strings.ToLower(strings.TrimSpace(col))
			for _, hint := range fieldHints[field] {
				if strings.Contains(name, hint) {
					return i
				}
			}
		}
		return -1
	}

	mapping.Amount = find("amount")
	mapping.Date = find("date")
	mapping.Category = find("category")
	mapping.Description = find("description")
	return mapping
}
