package types

import "github.com/shopspring/decimal"

// InvoiceLine is one billed component of an invoice. Stored amounts are TTC;
// HT and TVA are derived per line at generation time and frozen.
type InvoiceLine struct {
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitTTC     decimal.Decimal `json:"unit_ttc"`
	TVARate     decimal.Decimal `json:"tva_rate"`
	TotalTTC    decimal.Decimal `json:"total_ttc"`
	TotalHT     decimal.Decimal `json:"total_ht"`
	TVAAmount   decimal.Decimal `json:"tva_amount"`
}

// TVABreakdownEntry groups invoice totals by TVA rate.
type TVABreakdownEntry struct {
	Rate   decimal.Decimal `json:"rate"`
	BaseHT decimal.Decimal `json:"base_ht"`
	Amount decimal.Decimal `json:"amount"`
}

// PartySnapshot freezes seller or buyer identity on an invoice.
type PartySnapshot struct {
	Name      string  `json:"name"`
	LegalName string  `json:"legal_name,omitempty"`
	SIRET     string  `json:"siret,omitempty"`
	TVANumber string  `json:"tva_number,omitempty"`
	Email     string  `json:"email,omitempty"`
	Address   Address `json:"address"`
}
