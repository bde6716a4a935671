package logr

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		log       func(logger logr.Logger)
		want      string
	}{
		{
			"info",
			0,
			func(logger logr.Logger) {
				logger.Info("something", "foo", "bar")
			},
			"level=INFO msg=something foo=bar\n",
		},
		{
			"debug",
			1,
			func(logger logr.Logger) {
				logger.V(1).Info("something", "foo", "bar")
			},
			"level=DEBUG msg=something foo=bar\n",
		},
		{
			"hide debug",
			0,
			func(logger logr.Logger) {
				logger.V(1).Info("should not see this", "foo", "bar")
			},
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(&buf, Config{Verbosity: tt.verbosity, Format: "text"})
			require.NoError(t, err)

			tt.log(logger)

			// strip the timestamp
			got := buf.String()
			if i := bytes.IndexByte([]byte(got), ' '); i >= 0 && got != "" {
				got = got[i+1:]
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Config{})
	require.NoError(t, err)

	logger.Error(errors.New("woops"), "spilt me beer", "foo", "bar")
	assert.Contains(t, buf.String(), `level=ERROR msg="spilt me beer"`)
	assert.Contains(t, buf.String(), "err=woops")
	assert.Contains(t, buf.String(), "foo=bar")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Config{Format: "json"})
	require.NoError(t, err)

	logger.Info("saved", "cards", 3)
	assert.Contains(t, buf.String(), `"msg":"saved"`)
	assert.Contains(t, buf.String(), `"cards":3`)
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Config{Format: "xml"})
	assert.Error(t, err)
}
