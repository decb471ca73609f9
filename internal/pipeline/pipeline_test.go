package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/pv-monitoring-etl/internal/domain"
	"github.com/couchcryptid/pv-monitoring-etl/internal/observability"
	"github.com/couchcryptid/pv-monitoring-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	messages []domain.RawMessage
	calls    atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawMessage, error) {
	if m.calls.Add(1) > 1 || len(m.messages) == 0 {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if len(m.messages) > batchSize {
		return m.messages[:batchSize], nil
	}
	return m.messages, nil
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawMessage) (domain.DaySummary, error) {
	if m.err != nil {
		return domain.DaySummary{}, m.err
	}
	return domain.DaySummary{Date: string(raw.Key), Samples: 3}, nil
}

type mockLoader struct {
	err    error
	loaded []domain.DaySummary
}

func (m *mockLoader) LoadBatch(_ context.Context, summaries []domain.DaySummary) error {
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, summaries...)
	return nil
}

type mockRunner struct {
	name        string
	coefficient float64
	calls       int
}

func (m *mockRunner) ProcessDay(_ context.Context, name string, coefficient float64) (domain.DaySummary, error) {
	m.calls++
	m.name = name
	m.coefficient = coefficient
	return domain.DaySummary{Source: name, Coefficient: coefficient}, nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func runFor(t *testing.T, p *pipeline.Pipeline, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, p.Run(ctx))
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ext := &mockExtractor{messages: []domain.RawMessage{
		makeDayJob("2022-09-13"),
		makeDayJob("2022-09-14"),
	}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)
	require.Error(t, p.CheckReadiness(context.Background()))

	runFor(t, p, 300*time.Millisecond)

	require.Len(t, ldr.loaded, 2)
	assert.Equal(t, "2022-09-13", ldr.loaded[0].Date)
	require.NoError(t, p.CheckReadiness(context.Background()))

	last, ok := p.LastSummary()
	require.True(t, ok)
	assert.Equal(t, "2022-09-14", last.Date)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{}, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)

	_, ok := p.LastSummary()
	assert.False(t, ok)
}

func TestPipeline_Run_TransformErrorSkipsAndCommits(t *testing.T) {
	var committed atomic.Bool
	raw := makeDayJob("2022-09-14")
	raw.Commit = func(_ context.Context) error {
		committed.Store(true)
		return nil
	}

	ldr := &mockLoader{}
	p := pipeline.New(
		&mockExtractor{messages: []domain.RawMessage{raw}},
		&mockTransformer{err: domain.ErrMalformedInput},
		ldr, slog.Default(), newTestMetrics(), 10,
	)

	runFor(t, p, 300*time.Millisecond)

	assert.Empty(t, ldr.loaded)
	assert.True(t, committed.Load(), "failed job is committed so it is not redelivered")
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	var committed atomic.Bool
	raw := makeDayJob("2022-09-14")
	raw.Topic = "pv-day-ready"
	raw.Commit = func(_ context.Context) error {
		committed.Store(true)
		return nil
	}

	p := pipeline.New(
		&mockExtractor{messages: []domain.RawMessage{raw}},
		&mockTransformer{}, &mockLoader{}, slog.Default(), newTestMetrics(), 10,
	)

	runFor(t, p, 300*time.Millisecond)
	assert.True(t, committed.Load())
}

func TestPipeline_Run_LoadErrorDoesNotCommit(t *testing.T) {
	var committed atomic.Bool
	raw := makeDayJob("2022-09-14")
	raw.Commit = func(_ context.Context) error {
		committed.Store(true)
		return nil
	}

	p := pipeline.New(
		&mockExtractor{messages: []domain.RawMessage{raw}},
		&mockTransformer{}, &mockLoader{err: errors.New("broker unavailable")},
		slog.Default(), newTestMetrics(), 10,
	)

	runFor(t, p, 300*time.Millisecond)

	assert.False(t, committed.Load())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_RespectsBatchSize(t *testing.T) {
	ext := &mockExtractor{messages: []domain.RawMessage{
		makeDayJob("2022-09-12"),
		makeDayJob("2022-09-13"),
		makeDayJob("2022-09-14"),
	}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, slog.Default(), newTestMetrics(), 2)
	runFor(t, p, 300*time.Millisecond)

	assert.Len(t, ldr.loaded, 2)
}

func TestDayTransformer_Transform(t *testing.T) {
	override := 0.75

	tests := []struct {
		name     string
		raw      domain.RawMessage
		wantFile string
		wantCoef float64
	}{
		{
			name:     "date job uses default coefficient",
			raw:      domain.RawMessage{Value: []byte(`{"date":"2022-09-14"}`)},
			wantFile: "2022-09-14.csv",
			wantCoef: 0.88,
		},
		{
			name:     "date in key",
			raw:      makeDayJob("2022-09-14"),
			wantFile: "2022-09-14.csv",
			wantCoef: 0.88,
		},
		{
			name:     "file job with coefficient override",
			raw:      domain.RawMessage{Value: []byte(`{"file":"site-a/2022-09-14.csv","coefficient":0.75}`)},
			wantFile: "site-a/2022-09-14.csv",
			wantCoef: override,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{}
			tfm := pipeline.NewTransformer(runner, 0.88)

			out, err := tfm.Transform(context.Background(), tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFile, runner.name)
			assert.Equal(t, tt.wantCoef, runner.coefficient)
			assert.Equal(t, tt.wantFile, out.Source)
		})
	}
}

func TestDayTransformer_TransformMalformedJob(t *testing.T) {
	runner := &mockRunner{}
	tfm := pipeline.NewTransformer(runner, 0.88)

	_, err := tfm.Transform(context.Background(), domain.RawMessage{Value: []byte("not json")})
	require.ErrorIs(t, err, domain.ErrMalformedInput)
	assert.Zero(t, runner.calls)
}

// --- helpers ---

func makeDayJob(date string) domain.RawMessage {
	return domain.RawMessage{Key: []byte(date)}
}
