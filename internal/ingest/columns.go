package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn is returned when a required column cannot be resolved.
var ErrMissingColumn = errors.New("missing required column")

// Header aliases, matched after normalizeColumnName.
var (
	skuAliases          = []string{"sku", "item", "item code", "product code", "codigo", "cod produto", "material"}
	lotAliases          = []string{"lot", "lote", "batch", "lot number"}
	lpnAliases          = []string{"lpn", "license plate", "pallet", "lp", "lpn id"}
	descriptionAliases  = []string{"description", "descricao", "product name", "item description", "nama"}
	locationAliases     = []string{"location", "localizacao", "endereco", "bin", "locator"}
	availableAliases    = []string{"available qty", "qty available", "available", "quantity available", "qtd disponivel", "disponivel", "quantity", "qty"}
	statusAliases       = []string{"status", "situacao", "estado", "lpn status"}
	expirationAliases   = []string{"expiration date", "expiry date", "expiry", "exp date", "validade", "data validade"}
	daysAliases         = []string{"days to expiry", "days to expire", "fpc", "shelf life days", "dias"}
	confirmedAliases    = []string{"confirmed qty", "qty confirmed", "confirmed quantity", "confirmed", "qtd confirmada", "quantity", "qty"}
	minAliases          = []string{"min qty", "min", "minimum", "minimo"}
	maxAliases          = []string{"max qty", "max", "maximum", "maximo"}
	crossQtyAliases     = []string{"quantity", "qty", "stock", "saldo", "qtd", "on hand"}
	minShelfLifeAliases = []string{"min days", "minimum shelf life", "min shelf life", "shelf life", "fpc", "dias"}
)

// columns resolves header aliases to column indexes.
type columns struct {
	header []string
}

// index returns the first header position that matches any alias, or -1.
// Aliases are tried in order so earlier aliases win.
func (c columns) index(aliases ...string) int {
	for _, alias := range aliases {
		target := normalizeColumnName(alias)
		for i, h := range c.header {
			if normalizeColumnName(h) == target {
				return i
			}
		}
	}
	return -1
}

func (c columns) require(name string, aliases ...string) (int, error) {
	idx := c.index(aliases...)
	if idx < 0 {
		return -1, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	return idx, nil
}

// cell returns the trimmed value at idx, or "" when the row is short or idx is unresolved.
func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
