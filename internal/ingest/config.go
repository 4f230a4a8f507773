package ingest

import "time"

// Config controls how sheet data is pulled from the Apps Script endpoint.
type Config struct {
	SourceURL  string        `envconfig:"APPS_SCRIPT_URL"`
	Timeout    time.Duration `envconfig:"INGEST_TIMEOUT" default:"30s"`
	MaxRetries uint          `envconfig:"INGEST_MAX_RETRIES" default:"3"`
}
