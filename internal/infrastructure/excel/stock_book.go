package excel

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	appledger "github.com/jhoicas/Compuestos-api/internal/application/ledger"
	"github.com/jhoicas/Compuestos-api/internal/domain/entity"
)

var _ appledger.BookExporter = (*StockBookExporter)(nil)

// StockBookExporter genera el libro de inventario en formato xlsx: una hoja
// con el resumen de materiales y otra con todos los movimientos del libro
// mayor, en el orden en que fueron asentados.
type StockBookExporter struct{}

// NewStockBookExporter construye el exportador.
func NewStockBookExporter() *StockBookExporter { return &StockBookExporter{} }

// Export escribe el libro completo. histories mapea ID de material a su
// historial; los materiales sin movimientos igual aparecen en el resumen.
func (e *StockBookExporter) Export(materials []*entity.Material, histories map[string][]entity.LedgerEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	summary := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(summary, "Materiales"); err != nil {
		return nil, fmt.Errorf("error renombrando hoja: %w", err)
	}
	summary = "Materiales"

	header := []interface{}{"Material", "Categoría", "Unidad", "Saldo"}
	if err := f.SetSheetRow(summary, "A1", &header); err != nil {
		return nil, fmt.Errorf("error escribiendo encabezado: %w", err)
	}

	row := 2
	for _, m := range materials {
		excelRow := []interface{}{
			m.Name,
			m.Category,
			m.Unit,
			m.Balance.String(),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, fmt.Errorf("error calculando celda: %w", err)
		}
		if err := f.SetSheetRow(summary, cell, &excelRow); err != nil {
			return nil, fmt.Errorf("error escribiendo fila: %w", err)
		}
		row++
	}

	movements := "Movimientos"
	if _, err := f.NewSheet(movements); err != nil {
		return nil, fmt.Errorf("error creando hoja de movimientos: %w", err)
	}

	movHeader := []interface{}{"Material", "Fecha", "Detalle", "Entrada", "Salida", "Saldo", "Observaciones"}
	if err := f.SetSheetRow(movements, "A1", &movHeader); err != nil {
		return nil, fmt.Errorf("error escribiendo encabezado: %w", err)
	}

	row = 2
	for _, m := range materials {
		for _, log := range histories[m.ID] {
			excelRow := []interface{}{
				m.Name,
				log.Date.Format("2006-01-02"),
				log.Particulars,
				log.Inward.String(),
				log.Outward.String(),
				log.Balance.String(),
				log.Remarks,
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, fmt.Errorf("error calculando celda: %w", err)
			}
			if err := f.SetSheetRow(movements, cell, &excelRow); err != nil {
				return nil, fmt.Errorf("error escribiendo fila: %w", err)
			}
			row++
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("error escribiendo libro: %w", err)
	}
	return buf.Bytes(), nil
}
