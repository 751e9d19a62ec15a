package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/xuri/excelize/v2"

	"meterdata-pipeline/config"
	"meterdata-pipeline/logger"
	"meterdata-pipeline/models"
	"meterdata-pipeline/validator"
)

var ErrNothingToExport = errors.New("no data in the selected period")

const (
	sheetName      = "Energia Adatok"
	timestampTitle = "Időpont"
	energyTitle    = "Fogyasztás (kWh)"
)

//Exporter writes spreadsheet and report artifacts for a query result into Dir
type Exporter struct {
	Dir string
	Now func() time.Time
	Log logger.Logger
}

func NewExporter(configuration config.Configuration, lg logger.Logger) *Exporter {
	return &Exporter{
		Dir: configuration.EXPORT_DIR,
		Now: time.Now,
		Log: lg,
	}
}

func (e *Exporter) fileName(prefix string, g models.Granularity, ext string) string {
	return filepath.Join(e.Dir, fmt.Sprintf("%s_%s_%s%s", prefix, g, e.Now().Format(config.GetBackupDateLayout()), ext))
}

//ExportExcel writes the points to a two column sheet with a line chart and returns the file path
func (e *Exporter) ExportExcel(points []models.SeriesPoint, g models.Granularity) (string, error) {
	if len(points) == 0 {
		return "", ErrNothingToExport
	}
	if err := os.MkdirAll(e.Dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range []string{timestampTitle, energyTitle} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
	for n, p := range points {
		row := n + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), p.Timestamp.Format(config.GetOutputDateLayout()))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), p.EnergyKWh)
	}
	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "B", 18)

	last := len(points) + 1
	err = f.AddChart(sheetName, "D2", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheetName),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheetName, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheetName, last),
		}},
		Title: []excelize.RichTextRun{{Text: "Energiafogyasztás (" + g.String() + ")"}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to add chart: %w", err)
	}

	path := e.fileName("energia_export", g, ".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	e.Log.Info(fmt.Sprintf("Exported %d rows to %s", len(points), path))
	return path, nil
}

//ExportReport renders the validation summary and the selected points as an HTML document
func (e *Exporter) ExportReport(points []models.SeriesPoint, report models.Report, g models.Granularity) (string, error) {
	if len(points) == 0 {
		return "", ErrNothingToExport
	}
	if err := os.MkdirAll(e.Dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := e.fileName("energia_riport", g, ".html")
	if err := os.WriteFile(path, RenderReport(points, report, g), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	e.Log.Info("Report written to " + path)
	return path, nil
}

//RenderReport returns the markdown report converted to a complete HTML page
func RenderReport(points []models.SeriesPoint, report models.Report, g models.Granularity) []byte {
	md := ReportMarkdown(points, report, g)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Energia riport",
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

//ReportMarkdown combines the validation summary with a table of the selected points
func ReportMarkdown(points []models.SeriesPoint, report models.Report, g models.Granularity) string {
	var sb strings.Builder
	sb.WriteString("# Energia riport\n\n")
	fmt.Fprintf(&sb, "Aggregation: %s, %d rows\n\n", g, len(points))
	sb.WriteString(validator.Summary(report))

	sb.WriteString("\n## Data\n\n")
	fmt.Fprintf(&sb, "| %s | %s |\n|---|---:|\n", timestampTitle, energyTitle)
	for _, p := range points {
		fmt.Fprintf(&sb, "| %s | %.3f |\n", p.Timestamp.Format(config.GetOutputDateLayout()), p.EnergyKWh)
	}
	return sb.String()
}
