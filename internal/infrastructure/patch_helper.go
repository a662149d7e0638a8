package infrastructure

import (
	"encoding/json"
	"fmt"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ApplyInvoicePatch recebe a nota original e os deltas (RFC 6902), retornando a nota atualizada.
func ApplyInvoicePatch(original domain.Invoice, patchData []byte) (domain.Invoice, error) {
	originalJSON, err := json.Marshal(original)
	if err != nil {
		return original, err
	}

	patch, err := jsonpatch.DecodePatch(patchData)
	if err != nil {
		return original, fmt.Errorf("%w: falha ao decodificar patch: %v", domain.ErrInvalidPatch, err)
	}

	modifiedJSON, err := patch.Apply(originalJSON)
	if err != nil {
		return original, fmt.Errorf("%w: falha ao aplicar patch: %v", domain.ErrInvalidPatch, err)
	}

	var updated domain.Invoice
	if err := json.Unmarshal(modifiedJSON, &updated); err != nil {
		return original, fmt.Errorf("%w: nota resultante inválida: %v", domain.ErrInvalidPatch, err)
	}

	return updated, nil
}

// InvoiceDelta devolve o merge patch (RFC 7386) entre duas versões da nota.
// "{}" significa que nada mudou.
func InvoiceDelta(before, after domain.Invoice) (json.RawMessage, error) {
	beforeJSON, err := json.Marshal(before)
	if err != nil {
		return nil, err
	}
	afterJSON, err := json.Marshal(after)
	if err != nil {
		return nil, err
	}
	delta, err := jsonpatch.CreateMergePatch(beforeJSON, afterJSON)
	if err != nil {
		return nil, err
	}
	return delta, nil
}
