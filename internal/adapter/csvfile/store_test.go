package csvfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/pv-monitoring-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawDay = `timestamp,time,temperature,irradiance,voltage,current,power
1663182000,2022-09-14 12:00:00,30.5,812.25,36.2,11.1,401.82
1663182010,2022-09-14 12:00:10,30.5,810,36.1,3.2,60
1663182020.0,2022-09-14 12:00:20,-1.5,808,36,11,396
`

func TestReadSeries(t *testing.T) {
	series, err := ReadSeries(strings.NewReader(rawDay))
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, domain.Sample{
		Timestamp:   1663182000,
		Time:        "2022-09-14 12:00:00",
		Temperature: 30.5,
		Irradiance:  812.25,
		Voltage:     36.2,
		Current:     11.1,
		Power:       401.82,
	}, series[0])
	assert.Equal(t, int64(1663182020), series[2].Timestamp)
	assert.Equal(t, -1.5, series[2].Temperature)
}

func TestReadSeries_ColumnOrderAndExtras(t *testing.T) {
	in := "power,time,extra,timestamp,current,voltage,irradiance,temperature\n" +
		"400,2022-09-14 12:00:00,x,1663182000,11,36,800,30\n"

	series, err := ReadSeries(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 400.0, series[0].Power)
	assert.Equal(t, int64(1663182000), series[0].Timestamp)
}

func TestReadSeries_Malformed(t *testing.T) {
	tests := map[string]string{
		"empty file":       "",
		"missing column":   "timestamp,time,temperature,irradiance,voltage,current\n",
		"non-numeric":      "timestamp,time,temperature,irradiance,voltage,current,power\n1,t,hot,1,1,1,1\n",
		"NaN":              "timestamp,time,temperature,irradiance,voltage,current,power\n1,t,1,NaN,1,1,1\n",
		"empty value":      "timestamp,time,temperature,irradiance,voltage,current,power\n1,t,1,1,1,1,\n",
		"fractional stamp": "timestamp,time,temperature,irradiance,voltage,current,power\n1.5,t,1,1,1,1,1\n",
		"short row":        "timestamp,time,temperature,irradiance,voltage,current,power\n1,t,1\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSeries(strings.NewReader(in))
			require.ErrorIs(t, err, domain.ErrMalformedInput)
		})
	}
}

func TestProcessedRoundTrip(t *testing.T) {
	rows := []domain.ProcessedSample{
		{
			Sample:   domain.Sample{Timestamp: 1663182000, Time: "2022-09-14 12:00:00", Temperature: 30, Irradiance: 800, Voltage: 36, Current: 11, Power: 396},
			Smoothed: domain.Smoothed{Temperature: 30, Irradiance: 800.5, Voltage: 36.05, Current: 11, Power: 398.33},
			Estimate: domain.Estimate{IAMFactor: 0.9998763, PVWattsPower: 3841.12, ComputedPower: 3380.19},
		},
	}

	var buf strings.Builder
	require.NoError(t, WriteProcessed(&buf, rows))
	header, _, _ := strings.Cut(buf.String(), "\n")
	assert.Equal(t, strings.Join(domain.ProcessedColumns(), ","), header)

	got, err := ReadProcessed(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestReadProcessed_LegacyHeader(t *testing.T) {
	in := "timestamp,time,temperature,irradiance,voltage,current,power," +
		"temperature smoothed,irradiance smoothed,voltage smoothed,current smoothed,power smoothed," +
		"IAM factor,pvwatts power,computed power\n" +
		"1663182000,2022-09-14 12:00:00,30,800,36,11,396,30,800,36,11,398,0.99,3841.1,3380.2\n"

	rows, err := ReadProcessed(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.99, rows[0].Estimate.IAMFactor)
	assert.Equal(t, 398.0, rows[0].Smoothed.Power)
}

func TestStore(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "2022-09-14.csv"), []byte(rawDay), 0o600))

	series, err := store.LoadDay("2022-09-14.csv")
	require.NoError(t, err)
	require.Len(t, series, 3)

	rows := make([]domain.ProcessedSample, len(series))
	for i, s := range series {
		rows[i] = domain.ProcessedSample{Sample: s}
	}
	path, err := store.SaveProcessed("2022-09-14.csv", rows)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2022-09-14_processed.csv"), path)

	back, err := store.LoadProcessed("2022-09-14_processed.csv")
	require.NoError(t, err)
	assert.Equal(t, rows, back)

	raw, err := os.ReadFile(filepath.Join(dir, "2022-09-14.csv"))
	require.NoError(t, err)
	assert.Equal(t, rawDay, string(raw), "raw file is never rewritten")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestStore_SaveDay(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "data"))
	series := domain.Series{{Timestamp: 1, Time: "2022-09-14 00:00:01", Power: 1.25}}

	path, err := store.SaveDay("2022-09-14.csv", series)
	require.NoError(t, err)

	back, err := store.LoadDay(path)
	require.NoError(t, err)
	assert.Equal(t, series, back)
}

func TestStore_MissingFile(t *testing.T) {
	_, err := NewStore(t.TempDir()).LoadDay("1999-01-01.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
