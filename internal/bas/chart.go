// Package bas carries a curated subset of the BAS standard chart of
// accounts. It seeds new installations and gives imports sensible names for
// well-known numbers.
package bas

import "github.com/tinoosan/bokforing/internal/ledger"

// Def is one curated BAS account definition.
type Def struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	VAT    bool   `json:"vat"`
}

var curated = []Def{
	{Number: "1510", Name: "Kundfordringar"},
	{Number: "1910", Name: "Kassa"},
	{Number: "1930", Name: "Företagskonto"},
	{Number: "2081", Name: "Aktiekapital"},
	{Number: "2091", Name: "Balanserad vinst eller förlust"},
	{Number: "2099", Name: "Årets resultat"},
	{Number: "2440", Name: "Leverantörsskulder"},
	{Number: "2611", Name: "Utgående moms 25%", VAT: true},
	{Number: "2641", Name: "Ingående moms", VAT: true},
	{Number: "2710", Name: "Personalskatt"},
	{Number: "3001", Name: "Försäljning 25%"},
	{Number: "3740", Name: "Öres- och kronutjämning"},
	{Number: "4010", Name: "Inköp av varor"},
	{Number: "5010", Name: "Lokalhyra"},
	{Number: "6110", Name: "Kontorsmateriel"},
	{Number: "6570", Name: "Banktjänster"},
	{Number: "7010", Name: "Löner"},
	{Number: "8310", Name: "Ränteintäkter"},
	{Number: "8410", Name: "Räntekostnader"},
}

// Defaults returns the curated chart as domain accounts with BAS-derived
// types, ready for seeding.
func Defaults() []ledger.Account {
	out := make([]ledger.Account, 0, len(curated))
	for _, d := range curated {
		t, ok := ledger.TypeForNumber(d.Number)
		if !ok {
			continue
		}
		out = append(out, ledger.Account{
			Number: d.Number,
			Name:   d.Name,
			Type:   t,
			VAT:    d.VAT,
			Active: true,
		})
	}
	return out
}

// Curated exposes the raw definitions, for the HTTP dictionary endpoint.
func Curated() []Def { return curated }
