package main

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayName(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		date    string
		want    string
		wantErr bool
	}{
		{name: "file", file: "2022-09-14.csv", want: "2022-09-14.csv"},
		{name: "date", date: "2022-09-14", want: "2022-09-14.csv"},
		{name: "both", file: "a.csv", date: "2022-09-14", wantErr: true},
		{name: "neither", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dayName(tt.file, tt.date)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlagSet(t *testing.T) {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Float64("c", 0.88, "")
	fs.String("d", "", "")

	require.NoError(t, fs.Parse([]string{"-d", "2022-09-14"}))
	assert.False(t, flagSet(fs, "c"))
	assert.True(t, flagSet(fs, "d"))

	require.NoError(t, fs.Parse([]string{"-c", "0.88"}))
	assert.True(t, flagSet(fs, "c"), "explicit value equal to the default still counts")
}
