package analytics

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"github.com/xuri/excelize/v2"
)

// Sheet is a rendered report: a title, a header row and string cells.
type Sheet struct {
	Name    string
	Title   string
	Headers []string
	Rows    [][]string
}

// Exporter renders a sheet in one of the export formats.
type Exporter interface {
	Export(sheet Sheet, format string) (*Export, error)
}

type reportExporter struct {
	now func() time.Time
}

func NewExporter() Exporter {
	return &reportExporter{now: time.Now}
}

func (e *reportExporter) Export(sheet Sheet, format string) (*Export, error) {
	timestamp := e.now().Format("20060102_150405")
	base := fmt.Sprintf("%s_report_%s", sheet.Name, timestamp)

	switch format {
	case FormatCSV:
		data, err := e.exportCSV(sheet)
		if err != nil {
			return nil, err
		}
		return &Export{Data: data, Filename: base + ".csv", MimeType: "text/csv"}, nil

	case FormatExcel:
		data, err := e.exportExcel(sheet)
		if err != nil {
			return nil, err
		}
		return &Export{Data: data, Filename: base + ".xlsx", MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}, nil

	case FormatPDF:
		data, err := e.exportPDF(sheet)
		if err != nil {
			return nil, err
		}
		return &Export{Data: data, Filename: base + ".pdf", MimeType: "application/pdf"}, nil

	default:
		return nil, apperror.Validation("unsupported export format: %s", format)
	}
}

func (e *reportExporter) exportCSV(sheet Sheet) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(sheet.Headers); err != nil {
		return nil, err
	}
	for _, row := range sheet.Rows {
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportExcel(sheet Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := sheet.Title
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, header := range sheet.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, header)
	}
	for r, row := range sheet.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			// numeric text is written as a number cell
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				f.SetCellValue(sheetName, cell, n)
			} else {
				f.SetCellValue(sheetName, cell, value)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportPDF(sheet Sheet) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, sheet.Title)
	pdf.Ln(14)

	width := 277.0
	if n := len(sheet.Headers); n > 0 {
		width = width / float64(n)
	}

	pdf.SetFont("Arial", "B", 10)
	for _, header := range sheet.Headers {
		pdf.CellFormat(width, 7, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range sheet.Rows {
		for _, value := range row {
			align := "L"
			if _, err := strconv.ParseFloat(value, 64); err == nil {
				align = "R"
			}
			pdf.CellFormat(width, 6, value, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ==============================
// Sheets
// ==============================

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func breakdownSheet(dim Dimension, rows []TableRow) Sheet {
	s := Sheet{
		Name:    "breakdown_" + string(dim),
		Title:   "Revenue by " + string(dim),
		Headers: []string{"Key", "Label", "Donations", "Total Amount"},
	}
	for _, r := range rows {
		s.Rows = append(s.Rows, []string{r.Key, r.Label, strconv.FormatInt(r.DonationCount, 10), formatMoney(r.TotalAmount)})
	}
	return s
}

func distributionSheet(rows []DistributionRow) Sheet {
	s := Sheet{
		Name:    "distribution",
		Title:   "Recurring Amount Distribution",
		Headers: []string{"Range", "Plans", "Percentage"},
	}
	for _, r := range rows {
		s.Rows = append(s.Rows, []string{r.RangeLabel, strconv.FormatInt(r.Count, 10), formatMoney(r.Percentage)})
	}
	return s
}

var weekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func heatmapSheet(cells []HeatmapCell) Sheet {
	s := Sheet{
		Name:    "heatmap",
		Title:   "Donations by Day and Hour",
		Headers: []string{"Day", "Hour", "Donations", "Total Amount"},
	}
	for _, c := range cells {
		s.Rows = append(s.Rows, []string{weekdayNames[c.Day], fmt.Sprintf("%02d:00", c.Hour), strconv.FormatInt(c.DonationCount, 10), formatMoney(c.TotalAmount)})
	}
	return s
}

func cohortSheet(seg *Segmentation) Sheet {
	s := Sheet{
		Name:    "cohort_" + string(seg.Segment),
		Title:   fmt.Sprintf("Donor Segment %s %d", seg.Segment, seg.Year),
		Headers: []string{"Tier", "Donor ID", "Name", "Email", "Country", "Last Donation", "Lifetime Total"},
	}
	add := func(tier string, donors []CohortDonor) {
		for _, d := range donors {
			id := ""
			if d.DonorID != nil {
				id = strconv.FormatUint(uint64(*d.DonorID), 10)
			}
			s.Rows = append(s.Rows, []string{tier, id, d.Name, d.Email, d.Country, d.LastDonation, formatMoney(d.LifetimeTotal)})
		}
	}
	if seg.Segment == SegmentValueTiers {
		for _, tier := range []string{TierTop, TierMid, TierLow} {
			add(tier, seg.Tiers[tier])
		}
		return s
	}
	add(string(seg.Segment), seg.Donors)
	return s
}
