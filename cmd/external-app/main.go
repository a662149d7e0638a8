package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Victor-armando18/service-tax-transition/pkg/projection"
)

func main() {
	invoicePath := flag.String("nota", "data/nota.json", "nota fiscal (JSON) a projetar")
	livePath := flag.String("resultado", "", "resposta da calculadora RTC para o ano corrente (opcional)")
	schedulePath := flag.String("cronograma", "", "cronograma YAML (padrão: embutido)")
	flag.Parse()

	fmt.Println(strings.Repeat("=", 78))
	fmt.Println("   PROJEÇÃO DA TRANSIÇÃO TRIBUTÁRIA 2026-2033 - DIAGNOSTIC TOOL")
	fmt.Println(strings.Repeat("=", 78))

	projector, err := newProjector(*schedulePath)
	exitOnErr("cronograma", err)

	data, err := os.ReadFile(*invoicePath)
	exitOnErr("nota", err)
	var invoice projection.Invoice
	exitOnErr("nota", json.Unmarshal(data, &invoice))

	var live []byte
	if *livePath != "" {
		live, err = os.ReadFile(*livePath)
		exitOnErr("resultado", err)
	}

	years, err := projector.Project(invoice, live)
	exitOnErr("projeção", err)

	displaySummary(invoice, years)
}

func newProjector(path string) (*projection.Projector, error) {
	if path == "" {
		return projection.New()
	}
	return projection.NewFromFile(path)
}

func exitOnErr(stage string, err error) {
	if err != nil {
		fmt.Printf("\n❌ ERRO CRÍTICO [%s]: %v\n", stage, err)
		os.Exit(1)
	}
}

func displaySummary(invoice projection.Invoice, years []projection.YearResult) {
	// 1. ITENS
	fmt.Println("\n[1. ITENS DA NOTA]")
	for _, l := range invoice.Lines {
		fmt.Printf("   #%-3d NCM %-12s BC %12s  %s\n", l.Number, l.CommodityCode, l.TaxBase.StringFixed(2), l.Description)
	}

	// 2. TABELA ANUAL
	fmt.Println("\n[2. CARGA POR ANO]")
	fmt.Printf("   %-4s  %-28s %10s %10s %10s %12s %12s  %s\n", "ANO", "FASE", "CBS", "IBS", "IS", "LEGADOS", "TOTAL", "FONTE")
	for _, y := range years {
		t := y.Totals
		fmt.Printf("   %-4d  %-28s %10s %10s %10s %12s %12s  %s\n",
			y.Year, y.Phase, t.CBS.StringFixed(2), t.IBS.StringFixed(2), t.SelectiveTax.StringFixed(2),
			t.Legacy.StringFixed(2), t.Grand.StringFixed(2), y.Source)
	}

	// 3. IMPOSTO SELETIVO
	fmt.Println("\n[3. IMPOSTO SELETIVO]")
	found := false
	for _, y := range years {
		for _, l := range y.Lines {
			if l.SelectiveTaxInfo == nil {
				continue
			}
			found = true
			fmt.Printf("   %d  item #%d: %s (%s%%) -> %s\n", y.Year, l.Number, l.SelectiveTaxInfo.Description,
				l.SelectiveTaxInfo.Rate.Shift(2).String(), l.SelectiveTax.StringFixed(2))
		}
	}
	if !found {
		fmt.Println("   ✅ Nenhum item sujeito ao IS.")
	}

	fmt.Println(strings.Repeat("=", 78))
}
