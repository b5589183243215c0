// Package pdf implementa la generación de la hoja de producción de una orden
// de compuesto, lista para imprimir y llevar a planta.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Fórmula  │  N° Orden + Fecha                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: Turno / Máquina / Operario                          │
//	│  LOTE: Batch N° + Peso de lote + N° de lotes                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ingrediente | Por lote | Total | Descontado         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL CARGADO + Observaciones                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	apporder "github.com/jhoicas/Compuestos-api/internal/application/order"
	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoSheetGenerator implementa order.SheetGenerator usando Maroto v2.
type MarotoSheetGenerator struct{}

// NewMarotoSheetGenerator construye el generador.
func NewMarotoSheetGenerator() *MarotoSheetGenerator { return &MarotoSheetGenerator{} }

var _ apporder.SheetGenerator = (*MarotoSheetGenerator)(nil)

// GenerateOrderSheet genera el PDF de la hoja de producción y devuelve sus bytes.
func (g *MarotoSheetGenerator) GenerateOrderSheet(
	_ context.Context,
	o *entity.Order,
	formula *entity.Formula,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Orden de Producción "+o.OrderNo, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(o, formula))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(shiftRow(o))
	m.AddRows(batchRow(o))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Tabla de consumos
	m.AddRows(tableHeaderRow())
	for _, r := range tableConsumptionRows(o, formula) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(o))

	if o.Remarks != "" {
		m.AddRows(line.NewRow(2))
		m.AddRows(remarksRow(o))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: fórmula (izq) y N° Orden + Fecha (der).
func headerRow(o *entity.Order, formula *entity.Formula) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(formula.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Multiplicador de lote: "+formula.LotMultiplier.String(), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ORDEN DE PRODUCCIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(o.OrderNo, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+o.Date, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// shiftRow: turno, máquina y operario.
func shiftRow(o *entity.Order) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DE PLANTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Turno: %s   |   Máquina: %s   |   Operario: %s",
				o.Shift, o.MachineNo, o.Operator,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// batchRow: identificación y tamaño del lote.
func batchRow(o *entity.Order) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("LOTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Batch N°: %s   |   Peso de lote: %s kg   |   N° de lotes: %d",
				o.BatchNo, o.BatchWeight.String(), o.NumberOfBatches,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de consumos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Ingrediente", 5, align.Left),
		h("Consumo/lote", 3, align.Right),
		h("Total", 2, align.Right),
		h("Descontado", 2, align.Center),
	)
}

// tableConsumptionRows: una fila por línea de consumo de la orden.
func tableConsumptionRows(o *entity.Order, formula *entity.Formula) []core.Row {
	perLot := make(map[string]string, len(formula.Ingredients))
	for _, ing := range formula.Ingredients {
		if ing.Consumption != nil {
			perLot[ing.Name] = ing.Consumption.String()
		}
	}

	result := make([]core.Row, 0, len(o.Consumptions))
	for _, c := range o.Consumptions {
		applied := "NO"
		if c.Applied {
			applied = "SÍ"
		}
		result = append(result, row.New(7).Add(
			col.New(5).Add(text.New(
				c.Ingredient,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				nonEmpty(perLot[c.Ingredient], "—"),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				c.Quantity.String(),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				applied,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
		))
	}
	return result
}

// totalsRow: total cargado a la orden.
func totalsRow(o *entity.Order) core.Row {
	total := decimal.Zero
	for _, c := range o.Consumptions {
		total = total.Add(c.Quantity)
	}

	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL CARGADO:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2, Top: 1,
		})),
		col.New(3).Add(text.New(total.String()+" kg", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 1,
		})),
	)
}

// remarksRow: observaciones del supervisor.
func remarksRow(o *entity.Order) core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New("Observaciones: "+o.Remarks, props.Text{
			Size: 8, Color: colorGray, Top: 2,
		}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
