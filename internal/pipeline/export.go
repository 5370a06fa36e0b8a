package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/JakeFAU/survivor-stats/internal/store"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// tableCSV renders rows of t with the column names as header. Lists and
// maps are written as JSON.
func tableCSV(t store.Table, rows [][]any) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return nil, fmt.Errorf("write %s header: %w", t, err)
	}
	for i, row := range rows {
		rec := make([]string, len(row))
		for j, v := range row {
			s, err := cell(v)
			if err != nil {
				return nil, fmt.Errorf("%s row %d column %s: %w", t, i, t.Columns[j].Name, err)
			}
			rec[j] = s
		}
		if err := cw.Write(rec); err != nil {
			return nil, fmt.Errorf("write %s row %d: %w", t, i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flush %s: %w", t, err)
	}
	return buf.Bytes(), nil
}

func cell(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case int:
		return strconv.Itoa(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// putCSV renders and stores one table under dir.
func putCSV(ctx context.Context, blobs survivor.BlobStore, dir string, t store.Table, rows [][]any) (string, error) {
	data, err := tableCSV(t, rows)
	if err != nil {
		return "", err
	}
	uri, err := blobs.PutObject(ctx, dir+"/"+t.Name+".csv", "text/csv", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("store %s export: %w", t, err)
	}
	return uri, nil
}
