package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"fairlens/domain/dataset"
)

// LocalTable reads the fallback table from disk. Delimited text is the normal
// case; a spreadsheet export works too, read from the first sheet.
type LocalTable struct {
	path     string
	fileType string // "csv" or "xlsx"
}

func NewLocalTable(path string) *LocalTable {
	fileType := "csv"
	if strings.ToLower(filepath.Ext(path)) == ".xlsx" {
		fileType = "xlsx"
	}
	return &LocalTable{path: path, fileType: fileType}
}

func (s *LocalTable) Location() string { return s.path }

func (s *LocalTable) Fetch(ctx context.Context) ([][]string, dataset.Origin, error) {
	origin := dataset.Origin{Kind: dataset.OriginFallback, Location: s.path}

	if _, err := os.Stat(s.path); err != nil {
		return nil, origin, fmt.Errorf("fallback file %s: %w", s.path, err)
	}

	start := time.Now()
	var rows [][]string
	var err error
	switch s.fileType {
	case "xlsx":
		rows, err = s.readSpreadsheet()
	default:
		rows, err = s.readDelimited()
	}
	if err != nil {
		return nil, origin, err
	}
	if len(rows) == 0 {
		return nil, origin, fmt.Errorf("fallback file %s: empty table", s.path)
	}

	log.Printf("[DatasetSource] Fallback table read in %.2fms (%d rows)", float64(time.Since(start).Nanoseconds())/1e6, len(rows))
	return rows, origin, nil
}

func (s *LocalTable) readDelimited() ([][]string, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return rows, nil
}

func (s *LocalTable) readSpreadsheet() ([][]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%s has no sheets", s.path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheet, s.path, err)
	}
	return rows, nil
}
