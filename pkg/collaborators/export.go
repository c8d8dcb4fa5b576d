package collaborators

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/weftlabs/weft/pkg/actions"
)

// FileExporter materializes workflow exports as files under a root directory
// and returns their paths. The export destination becomes a subdirectory.
type FileExporter struct {
	root string
}

func NewFileExporter(root string) *FileExporter {
	return &FileExporter{root: root}
}

func (e *FileExporter) Export(_ context.Context, export actions.Export) (string, error) {
	dir := filepath.Join(e.root, filepath.FromSlash(export.Destination))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	name := fmt.Sprintf("export-%s-%s.%s",
		time.Now().UTC().Format("20060102-150405"), uuid.New().String()[:8], export.Format)
	path := filepath.Join(dir, name)

	var err error

	switch export.Format {
	case "json":
		err = writeJSON(path, export.Data)
	case "csv":
		err = writeCSV(path, export.Data)
	case "pdf":
		err = writePDF(path, export.Data)
	default:
		return "", fmt.Errorf("unsupported export format %q", export.Format)
	}

	if err != nil {
		return "", err
	}

	return path, nil
}

func writeJSON(path string, data any) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}

	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	return nil
}

func writeCSV(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	writer := csv.NewWriter(file)

	for _, row := range tabulate(data) {
		if err := writer.Write(row); err != nil {
			_ = file.Close()

			return fmt.Errorf("write export row: %w", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		_ = file.Close()

		return fmt.Errorf("flush export: %w", err)
	}

	return file.Close()
}

// tabulate flattens the export payload into CSV rows. Lists of objects get a
// sorted-union header row; plain objects become key/value pairs; everything
// else becomes a single value column.
func tabulate(data any) [][]string {
	switch value := data.(type) {
	case []any:
		if columns := objectColumns(value); columns != nil {
			rows := [][]string{columns}
			for _, item := range value {
				object, _ := item.(map[string]any)

				row := make([]string, len(columns))
				for i, column := range columns {
					row[i] = cellValue(object[column])
				}

				rows = append(rows, row)
			}

			return rows
		}

		rows := [][]string{{"value"}}
		for _, item := range value {
			rows = append(rows, []string{cellValue(item)})
		}

		return rows
	case map[string]any:
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		rows := [][]string{{"key", "value"}}
		for _, key := range keys {
			rows = append(rows, []string{key, cellValue(value[key])})
		}

		return rows
	default:
		return [][]string{{"value"}, {cellValue(data)}}
	}
}

// objectColumns returns the sorted union of keys when every element is an
// object, nil otherwise.
func objectColumns(items []any) []string {
	if len(items) == 0 {
		return nil
	}

	seen := map[string]bool{}

	for _, item := range items {
		object, ok := item.(map[string]any)
		if !ok {
			return nil
		}

		for key := range object {
			seen[key] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}

	sort.Strings(columns)

	return columns
}

func cellValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case map[string]any, []any:
		raw, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprintf("%v", typed)
		}

		return string(raw)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

const pdfMaxLines = 50

// writePDF renders the payload as a one-page text report through pdfcpu's
// JSON page declaration.
func writePDF(path string, data any) error {
	lines := []string{
		"Workflow export",
		"Generated " + time.Now().UTC().Format(time.RFC3339),
		"",
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}

	payload := bytes.Split(raw, []byte("\n"))
	for i, line := range payload {
		if len(lines) >= pdfMaxLines {
			lines = append(lines, fmt.Sprintf("... %d more lines", len(payload)-i))

			break
		}

		lines = append(lines, string(line))
	}

	text := make([]map[string]any, 0, len(lines))
	for i, line := range lines {
		if line == "" {
			continue
		}

		size := 10
		if i == 0 {
			size = 16
		}

		text = append(text, map[string]any{
			"value":    line,
			"position": []float64{40, 800 - 14*float64(i)},
			"font":     map[string]any{"name": "Helvetica", "size": size},
		})
	}

	declaration := map[string]any{
		"pages": map[string]any{
			"1": map[string]any{
				"content": map[string]any{"text": text},
			},
		},
	}

	decl, err := json.Marshal(declaration)
	if err != nil {
		return fmt.Errorf("encode page declaration: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	if err := api.Create(nil, bytes.NewReader(decl), file, model.NewDefaultConfiguration()); err != nil {
		_ = file.Close()

		return fmt.Errorf("render pdf: %w", err)
	}

	return file.Close()
}
