package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v5"

	errx "github.com/Chative-core-poc-v1/sheetsql/internal/core/error"
	logx "github.com/Chative-core-poc-v1/sheetsql/pkg/logger"
)

// Fetcher downloads the spreadsheet export.
type Fetcher struct {
	url        string
	client     *http.Client
	maxRetries uint
	newBackOff func() backoff.BackOff
}

func NewFetcher(cfg Config) *Fetcher {
	return &Fetcher{
		url:        cfg.SourceURL,
		client:     &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

// Fetch returns the sheets in the order the endpoint lists them. Network
// errors, 5xx and 429 responses are retried; other 4xx responses and
// malformed bodies are not.
func (f *Fetcher) Fetch(ctx context.Context) ([]Sheet, error) {
	if strings.TrimSpace(f.url) == "" {
		return nil, errx.New(fmt.Errorf("APPS_SCRIPT_URL is not set"), http.StatusBadRequest, errx.IngestErrorMessage)
	}

	attempt := 0
	sheets, err := backoff.Retry(ctx, func() ([]Sheet, error) {
		attempt++
		if attempt > 1 {
			logx.Warn().Int("attempt", attempt).Msg("Retrying sheet fetch")
		}
		return f.fetchOnce(ctx)
	},
		backoff.WithBackOff(f.newBackOff()),
		backoff.WithMaxTries(f.maxRetries+1),
	)
	if err != nil {
		return nil, errx.WrapIngest(fmt.Errorf("fetch sheets: %w", err))
	}

	logx.Info().Int("sheets", len(sheets)).Int("attempts", attempt).Msg("Fetched sheet data")
	return sheets, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context) ([]Sheet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, backoff.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	sheets, err := DecodeSheets(body)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	return sheets, nil
}

// DecodeSheets parses {"Sheet": [{"col": value, ...}, ...], ...} keeping
// the order of sheets and of keys within each row.
func DecodeSheets(data []byte) ([]Sheet, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var sheets []Sheet
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		rows, err := readRows(dec)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return sheets, nil
}

func readRows(dec *json.Decoder) ([]Row, error) {
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	var rows []Row
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		var row Row
		for dec.More() {
			key, err := readKey(dec)
			if err != nil {
				return nil, err
			}
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("decode value of %q: %w", key, err)
			}
			row.set(key, cellText(raw))
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return rows, nil
}

func cellText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		return ""
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
