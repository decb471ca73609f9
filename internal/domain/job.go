package domain

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const dateLayout = "2006-01-02"

// Day file naming.
const (
	DayFileExt      = ".csv"
	ProcessedSuffix = "_processed"
)

// RawMessage is an unprocessed job message from the source topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// DayJob asks for one day file to be processed. Either Date or File is set;
// File wins when both are. Coefficient overrides the stored calibration.
type DayJob struct {
	Date        string   `json:"date,omitempty"`
	File        string   `json:"file,omitempty"`
	Coefficient *float64 `json:"coefficient,omitempty"`
}

// ParseDayJob decodes a job message. A message with an empty body is read as
// a date carried in the key.
func ParseDayJob(raw RawMessage) (DayJob, error) {
	var job DayJob
	if len(strings.TrimSpace(string(raw.Value))) > 0 {
		if err := json.Unmarshal(raw.Value, &job); err != nil {
			return DayJob{}, fmt.Errorf("%w: parse day job: %v", ErrMalformedInput, err)
		}
	} else {
		job.Date = string(raw.Key)
	}

	if job.File == "" && job.Date == "" {
		return DayJob{}, fmt.Errorf("%w: day job names neither date nor file", ErrMalformedInput)
	}
	if job.File == "" {
		if _, err := time.Parse(dateLayout, job.Date); err != nil {
			return DayJob{}, fmt.Errorf("%w: day job date %q: %v", ErrMalformedInput, job.Date, err)
		}
	}
	if job.Coefficient != nil && *job.Coefficient < 0 {
		return DayJob{}, fmt.Errorf("%w: day job coefficient %v is negative", ErrMalformedInput, *job.Coefficient)
	}
	return job, nil
}

// FileName returns the raw day file the job refers to.
func (j DayJob) FileName() string {
	if j.File != "" {
		return j.File
	}
	return DayFileName(j.Date)
}

// DayFileName returns the raw file name for a YYYY-MM-DD date.
func DayFileName(date string) string {
	return date + DayFileExt
}

// ProcessedFileName derives the output name of a raw day file:
// "2022-09-14.csv" becomes "2022-09-14_processed.csv".
func ProcessedFileName(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = DayFileExt
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ProcessedSuffix + ext
}
