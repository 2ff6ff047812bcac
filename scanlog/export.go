package scanlog

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const (
	exportTimeLayout = "2006/01/02 15:04:05"
	exportState      = "Pass"
)

// ExportOutcome is the result of exporting one partition.
type ExportOutcome struct {
	Date  string `json:"date"`
	Path  string `json:"path,omitempty"`
	Rows  int    `json:"rows"`
	Error string `json:"error,omitempty"`
}

func (o ExportOutcome) OK() bool {
	return o.Error == ""
}

// ExportPartitions writes one <date>.xlsx per date under
// downloads/<object name>. A failing date does not stop the others.
func (s *Store) ExportPartitions(obj ScanObject, dates []string, lang string) []ExportOutcome {
	out := make([]ExportOutcome, 0, len(dates))
	for _, date := range dates {
		o := ExportOutcome{Date: date}
		path, rows, err := s.exportPartition(obj, date, lang)
		if err != nil {
			s.log.Errorf("export failed object=%q date=%q err=%v", obj.Value, date, err)
			o.Error = err.Error()
		} else {
			s.log.Debugf("export ok object=%q date=%q rows=%d path=%q", obj.Value, date, rows, path)
			o.Path = path
			o.Rows = rows
		}
		out = append(out, o)
	}
	return out
}

func (s *Store) exportPartition(obj ScanObject, date string, lang string) (string, int, error) {
	p, err := s.Partition(obj, date)
	if err != nil {
		return "", 0, err
	}
	dir, err := s.layout.DownloadsDir(obj.Name)
	if err != nil {
		return "", 0, err
	}
	if err := EnsureDir(dir); err != nil {
		return "", 0, err
	}
	path := filepath.Join(dir, date+".xlsx")
	if err := writeWorkbook(path, p.Records, lang); err != nil {
		return "", 0, err
	}
	return path, len(p.Records), nil
}

func writeWorkbook(path string, records []ScanRecord, lang string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := T(lang, msgExportData)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("sheet name: %w", err)
	}

	header := []any{T(lang, msgScanObjectName), T(lang, msgQRCode), T(lang, msgState), T(lang, msgDate)}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for col, width := range map[string]float64{"A": 20, "B": 30, "C": 20, "D": 20} {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.ObjectName, r.QRCode, exportState, r.Time().Format(exportTimeLayout)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
