package transition

import (
	"strings"
	"unicode"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
)

const prefixLength = 4

// Classifier associa um NCM à sua categoria do Imposto Seletivo. Vale a primeira
// categoria que casar, na ordem configurada.
type Classifier struct {
	categories []domain.SelectiveTaxCategory
}

func NewClassifier(categories []domain.SelectiveTaxCategory) *Classifier {
	return &Classifier{categories: categories}
}

// Classify nunca falha: código vazio, curto ou malformado só não tem categoria.
func (c *Classifier) Classify(commodityCode string) (domain.SelectiveTaxCategory, bool) {
	prefix := CommodityPrefix(commodityCode)
	if prefix == "" {
		return domain.SelectiveTaxCategory{}, false
	}
	for _, cat := range c.categories {
		for _, p := range cat.Prefixes {
			if p == prefix {
				return cat, true
			}
		}
	}
	return domain.SelectiveTaxCategory{}, false
}

// Match é o Classify no formato de LineResult.SelectiveTaxInfo.
func (c *Classifier) Match(commodityCode string) *domain.SelectiveTaxMatch {
	cat, ok := c.Classify(commodityCode)
	if !ok {
		return nil
	}
	return &domain.SelectiveTaxMatch{Rate: cat.Rate, Description: cat.Description}
}

// CommodityPrefix remove separadores ("2203.00.00" -> "2203") e devolve no máximo
// os quatro primeiros caracteres.
func CommodityPrefix(code string) string {
	var b strings.Builder
	n := 0
	for _, r := range code {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(r)
		if n++; n == prefixLength {
			break
		}
	}
	return b.String()
}
