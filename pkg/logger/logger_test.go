package logx

import (
	"bytes"
	"testing"

	"github.com/Chative-core-poc-v1/sheetsql/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestInitProductionWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerOpts{Environment: core.Production, Output: &buf})
	t.Cleanup(func() { Init() })

	Debug().Msg("hidden")
	Info().Str("run_id", "r1").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"run_id":"r1"`)
	assert.Contains(t, out, `"message":"visible"`)
}

func TestInitVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerOpts{Environment: core.Production, Verbose: true, Output: &buf})
	t.Cleanup(func() { Init() })

	Debug().Msg("now visible")
	assert.Contains(t, buf.String(), "now visible")
}
