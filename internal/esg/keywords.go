package esg

import "syndicateiq/internal/models"

// Keyword is a phrase and the points it contributes when present.
type Keyword struct {
	Phrase string
	Points int
}

// Table is the keyword list for one category.
type Table struct {
	Category models.ESGCategory
	Keywords []Keyword
}

// ============================================================
// Environmental
// ============================================================

var EnvironmentalTable = Table{
	Category: models.CategoryEnvironmental,
	Keywords: []Keyword{
		{"renewable", 20},
		{"solar", 20},
		{"wind energy", 20},
		{"carbon neutral", 25},
		{"net zero", 25},
		{"emissions reduction", 20},
		{"climate", 15},
		{"sustainability", 15},
		{"green bond", 25},
		{"energy efficiency", 15},
		{"recycling", 10},
		{"biodiversity", 15},
		{"water management", 10},
		{"environmental impact", 15},
	},
}

// ============================================================
// Social
// ============================================================

var SocialTable = Table{
	Category: models.CategorySocial,
	Keywords: []Keyword{
		{"diversity", 20},
		{"inclusion", 15},
		{"community", 15},
		{"human rights", 25},
		{"labor standards", 20},
		{"health and safety", 20},
		{"employee welfare", 15},
		{"fair wage", 20},
		{"social impact", 20},
		{"education", 10},
		{"affordable housing", 20},
	},
}

// ============================================================
// Governance
// ============================================================

var GovernanceTable = Table{
	Category: models.CategoryGovernance,
	Keywords: []Keyword{
		{"audit", 25},
		{"board independence", 25},
		{"compliance", 20},
		{"transparency", 20},
		{"anti-corruption", 25},
		{"risk management", 20},
		{"ethics", 15},
		{"whistleblower", 20},
		{"disclosure", 15},
		{"shareholder rights", 20},
		{"internal control", 20},
	},
}

// DefaultTables returns the built-in tables in category order.
func DefaultTables() []Table {
	return []Table{EnvironmentalTable, SocialTable, GovernanceTable}
}
