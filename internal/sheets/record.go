package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	SheetWorkouts    = "Treinos"
	SheetLogs        = "Logs"
	SheetBodyMetrics = "Bioimpedancia"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=sheets

// Client is the remote table store. Every call is a single attempt.
type Client interface {
	FetchSheet(ctx context.Context, name string) ([]Record, error)
	AppendRecords(ctx context.Context, name string, records []Record) error
}

// Record is one sheet row keyed by column header.
type Record map[string]any

// String returns the cell as text. Numbers are formatted without trailing
// zeros, so a plan stored as 1 comes back as "1". Absent and null cells
// report ok=false.
func (r Record) String(column string) (string, bool) {
	v, ok := r[column]
	if !ok || v == nil {
		return "", false
	}
	return CellText(v), true
}

// CellText stringifies a decoded cell value.
func CellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
