package transition

import (
	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/shopspring/decimal"
)

// LegacyResidual é o que ainda resta de ICMS/ISS, PIS+COFINS e IPI no ano.
type LegacyResidual struct {
	ICMS      decimal.Decimal
	PISCOFINS decimal.Decimal
	IPI       decimal.Decimal
	Total     decimal.Decimal
}

// LegacyResiduals aplica os fatores de redução do ano. ICMS, ICMS-ST e ISS são
// uma família só; baseline nil é tudo zero.
func LegacyResiduals(baseline *domain.LegacyTaxBaseline, entry domain.YearScheduleEntry) LegacyResidual {
	var b domain.LegacyTaxBaseline
	if baseline != nil {
		b = *baseline
	}

	icms := b.ICMS.Add(b.ICMSSubstitution).Add(b.ISS)
	pisCofins := b.PIS.Add(b.COFINS)

	r := LegacyResidual{
		ICMS:      roundAmount(icms.Mul(entry.ICMSFactor)),
		PISCOFINS: roundAmount(pisCofins.Mul(entry.PISCOFINSFactor)),
		IPI:       roundAmount(b.IPI.Mul(entry.IPIFactor)),
	}
	r.Total = roundAmount(r.ICMS.Add(r.PISCOFINS).Add(r.IPI))
	return r
}
