package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const maxErrorBodyLen = 512

// SheetDB talks to a SheetDB-style REST API: GET/POST <base>?sheet=<name>.
type SheetDB struct {
	baseURL        string
	token          string
	httpClient     *http.Client
	metricsManager *metrics.Manager
}

func NewSheetDB(
	baseURL string,
	token string,
	httpClient *http.Client,
	metricsManager *metrics.Manager,
) *SheetDB {
	return &SheetDB{
		baseURL:        strings.TrimSpace(baseURL),
		token:          token,
		httpClient:     httpClient,
		metricsManager: metricsManager,
	}
}

func (c *SheetDB) sheetURL(name string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("sheet", name)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *SheetDB) newRequest(ctx context.Context, method, sheet string, body io.Reader) (*http.Request, error) {
	sheetURL, err := c.sheetURL(sheet)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, sheetURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *SheetDB) FetchSheet(ctx context.Context, name string) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sheets.sheetdb.fetch")
	span.SetAttributes(attribute.String("sheet", name))
	defer tracing.EndSpanWithErrCheck(span, &err)
	defer func(begin time.Time) {
		ObserveRequest(c.metricsManager, name, http.MethodGet, begin, err)
	}(time.Now())

	req, err := c.newRequest(ctx, http.MethodGet, name, nil)
	if err != nil {
		return nil, &ConnectionError{Sheet: name, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{Sheet: name, Err: fmt.Errorf("http client do: %w", err)}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{
			Sheet:      name,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("read response body: %w", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ConnectionError{
			Sheet:      name,
			StatusCode: resp.StatusCode,
			Err:        errors.New(truncate(respBytes)),
		}
	}

	var records []Record
	if err := json.Unmarshal(respBytes, &records); err != nil {
		return nil, &ConnectionError{
			Sheet:      name,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("malformed response: %w", err),
		}
	}

	log.Tracef("sheetdb: fetched %d rows from %s", len(records), name)
	span.SetAttributes(attribute.Int("rows", len(records)))

	return records, nil
}

func (c *SheetDB) AppendRecords(ctx context.Context, name string, records []Record) (err error) {
	if len(records) == 0 {
		return nil
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "sheets.sheetdb.append")
	span.SetAttributes(attribute.String("sheet", name), attribute.Int("rows", len(records)))
	defer tracing.EndSpanWithErrCheck(span, &err)
	defer func(begin time.Time) {
		ObserveRequest(c.metricsManager, name, http.MethodPost, begin, err)
	}(time.Now())

	payload, err := json.Marshal(records)
	if err != nil {
		return &WriteError{Sheet: name, Err: fmt.Errorf("marshal records: %w", err)}
	}

	req, err := c.newRequest(ctx, http.MethodPost, name, bytes.NewReader(payload))
	if err != nil {
		return &WriteError{Sheet: name, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &WriteError{Sheet: name, Err: fmt.Errorf("http client do: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return &WriteError{
			Sheet:      name,
			StatusCode: resp.StatusCode,
			Err:        errors.New(truncate(respBytes)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	log.Debugf("sheetdb: appended %d rows to %s", len(records), name)

	return nil
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "unexpected status"
	}
	if len(s) > maxErrorBodyLen {
		return s[:maxErrorBodyLen] + "..."
	}
	return s
}
