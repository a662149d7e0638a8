package transition

import (
	"fmt"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
)

// LineIndex leva o número do item de volta à linha da nota com NCM e descrição.
type LineIndex map[int]domain.InvoiceLine

func IndexLines(lines []domain.InvoiceLine) LineIndex {
	idx := make(LineIndex, len(lines))
	for _, l := range lines {
		if _, dup := idx[l.Number]; !dup {
			idx[l.Number] = l
		}
	}
	return idx
}

// Renumber numera os itens 1..N, como a calculadora exige numa requisição.
// O índice devolvido leva o novo número à linha original.
func Renumber(lines []domain.InvoiceLine) ([]domain.InvoiceLine, LineIndex) {
	out := make([]domain.InvoiceLine, len(lines))
	idx := make(LineIndex, len(lines))
	for i, l := range lines {
		idx[i+1] = l
		l.Number = i + 1
		out[i] = l
	}
	return out, idx
}

func describe(line domain.InvoiceLine, number int) string {
	if line.Description != "" {
		return line.Description
	}
	return fmt.Sprintf("Item %d", number)
}
