package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayJob(t *testing.T) {
	t.Run("date job", func(t *testing.T) {
		job, err := ParseDayJob(RawMessage{Value: []byte(`{"date":"2022-09-14"}`)})
		require.NoError(t, err)
		assert.Equal(t, "2022-09-14", job.Date)
		assert.Equal(t, "2022-09-14.csv", job.FileName())
		assert.Nil(t, job.Coefficient)
	})

	t.Run("file job with coefficient override", func(t *testing.T) {
		job, err := ParseDayJob(RawMessage{Value: []byte(`{"file":"site-a/2022-09-14.csv","coefficient":0.91}`)})
		require.NoError(t, err)
		assert.Equal(t, "site-a/2022-09-14.csv", job.FileName())
		require.NotNil(t, job.Coefficient)
		assert.Equal(t, 0.91, *job.Coefficient)
	})

	t.Run("date in key with empty body", func(t *testing.T) {
		job, err := ParseDayJob(RawMessage{Key: []byte("2022-09-15")})
		require.NoError(t, err)
		assert.Equal(t, "2022-09-15.csv", job.FileName())
	})

	bad := []struct {
		name string
		raw  RawMessage
	}{
		{"invalid JSON", RawMessage{Value: []byte(`{not json`)}},
		{"empty job", RawMessage{Value: []byte(`{}`)}},
		{"bad date", RawMessage{Value: []byte(`{"date":"14/09/2022"}`)}},
		{"negative coefficient", RawMessage{Value: []byte(`{"date":"2022-09-14","coefficient":-1}`)}},
		{"nothing at all", RawMessage{}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDayJob(tt.raw)
			require.ErrorIs(t, err, ErrMalformedInput)
		})
	}
}

func TestProcessedFileName(t *testing.T) {
	tests := map[string]string{
		"2022-09-14.csv":        "2022-09-14_processed.csv",
		"site-a/2022-09-14.csv": "site-a/2022-09-14_processed.csv",
		"2022-09-14":            "2022-09-14_processed.csv",
	}
	for in, want := range tests {
		assert.Equal(t, want, ProcessedFileName(in), in)
	}
}
