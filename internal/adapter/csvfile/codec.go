package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/pv-monitoring-etl/internal/domain"
)

// header maps normalised column names to their index.
type header map[string]int

// readHeader reads the first record and checks that every required column is
// present. Column names are matched case-insensitively, with spaces read as
// underscores, so "IAM factor" matches iam_factor.
func readHeader(r *csv.Reader, required []string) (header, error) {
	rec, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", domain.ErrMalformedInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", domain.ErrMalformedInput, err)
	}

	h := make(header, len(rec))
	for i, name := range rec {
		h[normalise(name)] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", domain.ErrMalformedInput, strings.Join(missing, ", "))
	}
	return h, nil
}

func normalise(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// row decodes the fields of one record by column name.
type row struct {
	h    header
	rec  []string
	line int
	err  error
}

func (r *row) str(col string) string {
	i := r.h[col]
	if i >= len(r.rec) {
		if r.err == nil {
			r.err = fmt.Errorf("%w: line %d: no %s field", domain.ErrMalformedInput, r.line, col)
		}
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r *row) float(col string) float64 {
	if r.err != nil {
		return 0
	}
	s := r.str(col)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		r.err = fmt.Errorf("%w: line %d: %s %q is not a finite number", domain.ErrMalformedInput, r.line, col, s)
		return 0
	}
	return v
}

func (r *row) integer(col string) int64 {
	if r.err != nil {
		return 0
	}
	s := r.str(col)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	// Some loggers write epoch seconds as floats, e.g. 1663182000.0.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		r.err = fmt.Errorf("%w: line %d: %s %q is not an integer", domain.ErrMalformedInput, r.line, col, s)
		return 0
	}
	return int64(f)
}

// ReadSeries decodes a raw day file. Extra columns are ignored.
func ReadSeries(rd io.Reader) (domain.Series, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	h, err := readHeader(r, domain.RawColumns)
	if err != nil {
		return nil, err
	}

	var series domain.Series
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrMalformedInput, line, err)
		}
		rw := &row{h: h, rec: rec, line: line}
		s := decodeSample(rw)
		if rw.err != nil {
			return nil, rw.err
		}
		series = append(series, s)
	}
	return series, nil
}

func decodeSample(rw *row) domain.Sample {
	return domain.Sample{
		Timestamp:   rw.integer(domain.ColTimestamp),
		Time:        rw.str(domain.ColTime),
		Temperature: rw.float(domain.ColTemperature),
		Irradiance:  rw.float(domain.ColIrradiance),
		Voltage:     rw.float(domain.ColVoltage),
		Current:     rw.float(domain.ColCurrent),
		Power:       rw.float(domain.ColPower),
	}
}

// WriteSeries encodes a raw day file.
func WriteSeries(w io.Writer, series domain.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.RawColumns); err != nil {
		return err
	}
	for _, s := range series {
		if err := cw.Write(sampleFields(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadProcessed decodes a processed day file.
func ReadProcessed(rd io.Reader) ([]domain.ProcessedSample, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	h, err := readHeader(r, domain.ProcessedColumns())
	if err != nil {
		return nil, err
	}

	var rows []domain.ProcessedSample
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrMalformedInput, line, err)
		}
		rw := &row{h: h, rec: rec, line: line}
		p := domain.ProcessedSample{
			Sample: decodeSample(rw),
			Smoothed: domain.Smoothed{
				Temperature: rw.float(domain.ColTemperatureSmoothed),
				Irradiance:  rw.float(domain.ColIrradianceSmoothed),
				Voltage:     rw.float(domain.ColVoltageSmoothed),
				Current:     rw.float(domain.ColCurrentSmoothed),
				Power:       rw.float(domain.ColPowerSmoothed),
			},
			Estimate: domain.Estimate{
				IAMFactor:     rw.float(domain.ColIAMFactor),
				PVWattsPower:  rw.float(domain.ColPVWattsPower),
				ComputedPower: rw.float(domain.ColComputedPower),
			},
		}
		if rw.err != nil {
			return nil, rw.err
		}
		rows = append(rows, p)
	}
	return rows, nil
}

// WriteProcessed encodes a processed day file: the raw columns followed by
// the derived ones.
func WriteProcessed(w io.Writer, rows []domain.ProcessedSample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ProcessedColumns()); err != nil {
		return err
	}
	for _, r := range rows {
		rec := append(sampleFields(r.Sample),
			formatFloat(r.Smoothed.Temperature),
			formatFloat(r.Smoothed.Irradiance),
			formatFloat(r.Smoothed.Voltage),
			formatFloat(r.Smoothed.Current),
			formatFloat(r.Smoothed.Power),
			formatFloat(r.Estimate.IAMFactor),
			formatFloat(r.Estimate.PVWattsPower),
			formatFloat(r.Estimate.ComputedPower),
		)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func sampleFields(s domain.Sample) []string {
	return []string{
		strconv.FormatInt(s.Timestamp, 10),
		s.Time,
		formatFloat(s.Temperature),
		formatFloat(s.Irradiance),
		formatFloat(s.Voltage),
		formatFloat(s.Current),
		formatFloat(s.Power),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
