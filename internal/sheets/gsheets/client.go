// Package gsheets is a sheets.Client backed by the Google Sheets API. The
// first row of each sheet holds the column headers.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/gymplan/internal/sheets"
	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const (
	readColumns      = "A:Z"
	valueInputOption = "USER_ENTERED"
	insertDataOption = "INSERT_ROWS"
)

type Client struct {
	service        *sheetsapi.Service
	spreadsheetID  string
	metricsManager *metrics.Manager
}

var _ sheets.Client = (*Client)(nil)

// NewClient builds the client. With an empty credentialsFile the
// application default credentials are used.
func NewClient(
	ctx context.Context,
	spreadsheetID string,
	credentialsFile string,
	metricsManager *metrics.Manager,
	opts ...option.ClientOption,
) (*Client, error) {
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("new sheets service: %w", err)
	}
	return &Client{
		service:        service,
		spreadsheetID:  spreadsheetID,
		metricsManager: metricsManager,
	}, nil
}

func (c *Client) FetchSheet(ctx context.Context, name string) (_ []sheets.Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sheets.gsheets.fetch")
	span.SetAttributes(attribute.String("sheet", name))
	defer tracing.EndSpanWithErrCheck(span, &err)
	defer func(begin time.Time) {
		sheets.ObserveRequest(c.metricsManager, name, http.MethodGet, begin, err)
	}(time.Now())

	resp, err := c.service.Spreadsheets.Values.
		Get(c.spreadsheetID, name+"!"+readColumns).
		Context(ctx).
		Do()
	if err != nil {
		return nil, &sheets.ConnectionError{Sheet: name, StatusCode: statusCode(err), Err: err}
	}

	records := recordsFromValues(resp.Values)
	log.Tracef("gsheets: fetched %d rows from %s", len(records), name)

	return records, nil
}

func (c *Client) AppendRecords(ctx context.Context, name string, records []sheets.Record) (err error) {
	if len(records) == 0 {
		return nil
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "sheets.gsheets.append")
	span.SetAttributes(attribute.String("sheet", name), attribute.Int("rows", len(records)))
	defer tracing.EndSpanWithErrCheck(span, &err)
	defer func(begin time.Time) {
		sheets.ObserveRequest(c.metricsManager, name, http.MethodPost, begin, err)
	}(time.Now())

	headerResp, err := c.service.Spreadsheets.Values.
		Get(c.spreadsheetID, name+"!1:1").
		Context(ctx).
		Do()
	if err != nil {
		return &sheets.WriteError{Sheet: name, StatusCode: statusCode(err), Err: fmt.Errorf("read header row: %w", err)}
	}
	if len(headerResp.Values) == 0 || len(headerResp.Values[0]) == 0 {
		return &sheets.WriteError{Sheet: name, Err: errors.New("sheet has no header row")}
	}
	header := headerFromRow(headerResp.Values[0])

	_, err = c.service.Spreadsheets.Values.
		Append(c.spreadsheetID, name, &sheetsapi.ValueRange{Values: valuesFromRecords(header, records)}).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		return &sheets.WriteError{Sheet: name, StatusCode: statusCode(err), Err: err}
	}

	log.Debugf("gsheets: appended %d rows to %s", len(records), name)

	return nil
}

func statusCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func headerFromRow(row []any) []string {
	header := make([]string, len(row))
	for i, cell := range row {
		header[i] = strings.TrimSpace(sheets.CellText(cell))
	}
	return header
}

// recordsFromValues maps every row after the header to a record. Cells past
// the end of a short row are left out, and fully blank rows are dropped.
func recordsFromValues(values [][]any) []sheets.Record {
	if len(values) == 0 {
		return []sheets.Record{}
	}
	header := headerFromRow(values[0])

	records := make([]sheets.Record, 0, len(values)-1)
	for _, row := range values[1:] {
		record := make(sheets.Record, len(row))
		blank := true
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			record[header[i]] = cell
			if strings.TrimSpace(sheets.CellText(cell)) != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		records = append(records, record)
	}
	return records
}

// valuesFromRecords orders record values by the header. Keys not in the
// header are dropped.
func valuesFromRecords(header []string, records []sheets.Record) [][]any {
	values := make([][]any, 0, len(records))
	for _, record := range records {
		row := make([]any, len(header))
		for i, column := range header {
			v, ok := record[column]
			if !ok || v == nil {
				row[i] = ""
				continue
			}
			row[i] = v
		}
		values = append(values, row)
	}
	return values
}
