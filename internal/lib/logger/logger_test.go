package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		env       string
		debug     bool
		jsonLines bool
	}{
		{env: "local", debug: true},
		{env: "dev", debug: true, jsonLines: true},
		{env: "prod", debug: false, jsonLines: true},
		{env: "staging", debug: false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			log := newWithWriter(tt.env, &buf)

			assert.Equal(t, tt.debug, log.Enabled(context.Background(), slog.LevelDebug))

			log.Info("deal posted", slog.String("deal_id", "d1"))
			if tt.jsonLines {
				assert.Contains(t, buf.String(), `"deal_id":"d1"`)
			} else {
				assert.Contains(t, buf.String(), "deal_id=d1")
			}
		})
	}
}
