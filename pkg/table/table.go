// Package table reads the model table that drives a batch: one row per model,
// with the model identifier in the first column.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/davidthor/chainctl/pkg/errors"
	"github.com/davidthor/chainctl/pkg/names"
)

// headerNames are the first-cell values that mark the first row as a header.
var headerNames = map[string]bool{
	"filename":   true,
	"name":       true,
	"model":      true,
	"model_name": true,
	"model name": true,
}

// Model is one row of the table.
type Model struct {
	Name       string            `json:"name" yaml:"name"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Load reads models from a .csv or .xlsx file.
func Load(path string) ([]Model, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path)
	case ".csv", ".txt":
		rows, err = readCSVFile(path)
	default:
		return nil, errors.TableError(path, fmt.Errorf("unsupported table format %q", filepath.Ext(path)))
	}
	if err != nil {
		return nil, errors.TableError(path, err)
	}

	return FromRows(rows), nil
}

// ReadCSV reads models from CSV content.
func ReadCSV(r io.Reader) ([]Model, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, errors.TableError("<stream>", err)
	}
	return FromRows(rows), nil
}

// Names returns the model identifiers in table order.
func Names(models []Model) []string {
	out := make([]string, 0, len(models))
	for _, m := range models {
		out = append(out, m.Name)
	}
	return out
}

// Filter keeps the models whose name is in selected. An empty selection keeps
// everything.
func Filter(models []Model, selected []string) []Model {
	if len(selected) == 0 {
		return models
	}
	keep := make(map[string]bool, len(selected))
	for _, s := range selected {
		keep[s] = true
	}
	var out []Model
	for _, m := range models {
		if keep[m.Name] {
			out = append(out, m)
		}
	}
	return out
}

// FromRows converts raw rows into models. The first row is treated as a
// header only when its first cell names the identifier column.
func FromRows(rows [][]string) []Model {
	if len(rows) == 0 {
		return nil
	}

	var header []string
	if len(rows[0]) > 0 && headerNames[strings.ToLower(strings.TrimSpace(rows[0][0]))] {
		header = make([]string, len(rows[0]))
		for i, h := range rows[0] {
			header[i] = columnKey(h)
		}
		rows = rows[1:]
	}

	var models []Model
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		name := names.Normalize(strings.TrimSpace(row[0]))
		if names.IsBlank(name) {
			continue
		}

		m := Model{Name: name}
		for i := 1; i < len(row); i++ {
			value := names.Normalize(strings.TrimSpace(row[i]))
			if names.IsBlank(value) {
				continue
			}
			key := fmt.Sprintf("column_%d", i+1)
			if i < len(header) && header[i] != "" {
				key = header[i]
			}
			if m.Attributes == nil {
				m.Attributes = make(map[string]string)
			}
			m.Attributes[key] = value
		}
		models = append(models, m)
	}

	return models
}

func columnKey(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCSV(f)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}
