package forecast

import (
	"context"
	"fmt"
	"math"

	"StockSense/internal/domain/models"
	domsvc "StockSense/internal/domain/service"

	"gonum.org/v1/gonum/mat"
)

// Engine rolls a fixed-width window through a one-step sequence model to
// produce a multi-step forecast for every ticker in the universe.
//
// An Engine holds no per-call state and may be shared between goroutines;
// each Forecast call fits its own scaler and window.
type Engine struct {
	model      domsvc.SequenceModel
	universe   *Universe
	windowSize int
	horizon    int
}

// Option configures Engine.
type Option func(*Engine)

// WithWindowSize overrides the universe's window size.
func WithWindowSize(n int) Option {
	return func(e *Engine) { e.windowSize = n }
}

// WithHorizon overrides the universe's horizon.
func WithHorizon(n int) Option {
	return func(e *Engine) { e.horizon = n }
}

// NewEngine binds a model to the universe it was trained on.
func NewEngine(model domsvc.SequenceModel, universe *Universe, opts ...Option) (*Engine, error) {
	if model == nil {
		return nil, fmt.Errorf("forecast engine: model is required")
	}
	if universe == nil {
		return nil, fmt.Errorf("forecast engine: universe is required")
	}
	e := &Engine{
		model:      model,
		universe:   universe,
		windowSize: universe.WindowSize(),
		horizon:    universe.Horizon(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.windowSize <= 0 || e.horizon <= 0 {
		return nil, fmt.Errorf("forecast engine: window size and horizon must be positive")
	}
	return e, nil
}

func (e *Engine) Universe() *Universe { return e.universe }
func (e *Engine) WindowSize() int     { return e.windowSize }
func (e *Engine) Horizon() int        { return e.horizon }

// Forecast returns horizon predicted closes for every universe ticker. It
// either forecasts all tickers or returns an error; there is no partial result.
func (e *Engine) Forecast(ctx context.Context, p *Panel) (*models.Forecast, error) {
	if err := e.validate(p); err != nil {
		return nil, err
	}

	scaler, err := FitMinMax(p.Values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInsufficientHistory, err)
	}
	scaled, err := scaler.Transform(p.Values)
	if err != nil {
		return nil, err
	}

	n := e.universe.Len()
	window := newRollingWindow(scaled, e.windowSize)
	predicted := mat.NewDense(e.horizon, n, nil)

	for step := 1; step <= e.horizon; step++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", models.ErrForecastUnavailable, step, err)
		}
		out, err := e.model.Predict(ctx, window.batch())
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", models.ErrForecastUnavailable, step, err)
		}
		next, err := nextRow(out, n)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", models.ErrForecastUnavailable, step, err)
		}
		predicted.SetRow(step-1, next)
		window.slide(next)
	}

	prices, err := scaler.InverseTransform(predicted)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrForecastUnavailable, err)
	}

	out := &models.Forecast{
		UniverseVersion: e.universe.Version(),
		AsOf:            p.LastDate(),
		Horizon:         e.horizon,
		Prices:          make(map[string][]float64, n),
	}
	for j, t := range e.universe.tickers {
		out.Prices[t] = mat.Col(nil, j, prices)
	}
	return out, nil
}

func (e *Engine) validate(p *Panel) error {
	if p == nil || p.Values == nil {
		return fmt.Errorf("%w: empty panel", models.ErrInsufficientHistory)
	}
	if len(p.Tickers) != e.universe.Len() || p.Cols() != e.universe.Len() {
		return fmt.Errorf("%w: panel has %d columns, universe %s has %d",
			models.ErrUniverseMismatch, p.Cols(), e.universe.Version(), e.universe.Len())
	}
	for j, t := range p.Tickers {
		if t != e.universe.tickers[j] {
			return fmt.Errorf("%w: column %d is %s, want %s",
				models.ErrUniverseMismatch, j, t, e.universe.tickers[j])
		}
	}
	if p.Rows() < e.windowSize {
		return fmt.Errorf("%w: have %d rows, need %d", models.ErrInsufficientHistory, p.Rows(), e.windowSize)
	}
	r, c := p.Values.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := p.Values.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite close for %s at row %d", models.ErrMissingAssetData, p.Tickers[j], i)
			}
		}
	}
	return nil
}

// nextRow checks the model output is [1][n] and finite.
func nextRow(out [][]float64, n int) ([]float64, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("model returned %d rows, want 1", len(out))
	}
	if len(out[0]) != n {
		return nil, fmt.Errorf("model returned %d values, want %d", len(out[0]), n)
	}
	for j, v := range out[0] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("model returned non-finite value at column %d", j)
		}
	}
	return out[0], nil
}
