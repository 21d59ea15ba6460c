// Package pdf implementa el reporte de trazabilidad de envíos.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + alcance  │  Periodo del reporte           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Código | Estado | Ubicación | Repartidor |  │
//	│         Observaciones                                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: movimientos por estado                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"sort"

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

	"github.com/tu-usuario/rastreo-paquetes/internal/application/reportes"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReporteGenerator implementa reportes.TrazabilidadPDFGenerator usando
// Maroto v2.
type MarotoReporteGenerator struct{}

var _ reportes.TrazabilidadPDFGenerator = (*MarotoReporteGenerator)(nil)

// NewMarotoReporteGenerator construye el generador.
func NewMarotoReporteGenerator() *MarotoReporteGenerator { return &MarotoReporteGenerator{} }

// GenerarReporte genera el PDF y devuelve sus bytes.
func (g *MarotoReporteGenerator) GenerarReporte(_ context.Context, reporte *reportes.ReporteTrazabilidad) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Reporte de Trazabilidad de Envíos", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(reporte))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(reporte.Movimientos) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Sin movimientos en el periodo seleccionado.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	}
	for _, fila := range reporte.Movimientos {
		m.AddRows(tableDetailRow(fila))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	for _, r := range resumenRows(reporte) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título y alcance (izq), periodo (der).
func headerRow(reporte *reportes.ReporteTrazabilidad) core.Row {
	alcance := "Toda la operación"
	if reporte.EmpleadoNombre != "" {
		alcance = "Repartidor: " + reporte.EmpleadoNombre
	}
	periodo := fmt.Sprintf("Del %s al %s",
		reporte.Desde.Format("02/01/2006"),
		reporte.Hasta.Format("02/01/2006"),
	)

	return row.New(16).Add(
		col.New(7).Add(
			text.New("REPORTE DE TRAZABILIDAD", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(alcance, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Periodo", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(periodo, props.Text{Size: 9, Align: align.Right, Top: 7}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de movimientos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7.5, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Código", 2, align.Left),
		h("Estado", 2, align.Center),
		h("Ubicación", 2, align.Left),
		h("Repartidor", 2, align.Left),
		h("Observaciones", 2, align.Left),
	)
}

// tableDetailRow: una fila por movimiento.
func tableDetailRow(fila reportes.FilaMovimiento) core.Row {
	c := func(valor string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(valor, props.Text{
			Size: 7, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(
		c(fila.FechaHora.Format("02/01/2006 15:04"), 2, align.Left),
		c(fila.CodigoRastreo, 2, align.Left),
		c(fila.Estado, 2, align.Center),
		c(fila.Ubicacion, 2, align.Left),
		c(fila.EmpleadoNombre, 2, align.Left),
		c(fila.Observaciones, 2, align.Left),
	)
}

// resumenRows: conteo de movimientos por estado, en orden estable.
func resumenRows(reporte *reportes.ReporteTrazabilidad) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New("RESUMEN DEL PERIODO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}

	estados := make([]string, 0, len(reporte.TotalesPorEstado))
	for estado := range reporte.TotalesPorEstado {
		estados = append(estados, estado)
	}
	sort.Strings(estados)

	for _, estado := range estados {
		rows = append(rows, row.New(5).Add(
			col.New(3).Add(text.New(estado, props.Text{
				Size: 8, Top: 0.5, Left: 2,
			})),
			col.New(2).Add(text.New(fmt.Sprintf("%d", reporte.TotalesPorEstado[estado]), props.Text{
				Size: 8, Align: align.Right, Top: 0.5, Right: 1,
			})),
			col.New(7),
		))
	}
	rows = append(rows, row.New(6).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Total de movimientos: %d", len(reporte.Movimientos)), props.Text{
			Style: fontstyle.Bold, Size: 8, Top: 1, Left: 2,
		}),
	)))
	return rows
}
