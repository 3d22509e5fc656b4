package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"

	"StockSense/internal/domain/models"
	"StockSense/pkg/util"

	"gonum.org/v1/gonum/mat"
)

// Panel is a date-ascending matrix of closes, one column per universe ticker.
type Panel struct {
	Dates   []time.Time
	Tickers []string
	Values  *mat.Dense
}

// NewPanel builds a panel from row-major values.
func NewPanel(dates []time.Time, tickers []string, rows [][]float64) (*Panel, error) {
	if len(rows) == 0 || len(tickers) == 0 {
		return nil, fmt.Errorf("%w: empty panel", models.ErrInsufficientHistory)
	}
	if len(dates) != len(rows) {
		return nil, fmt.Errorf("panel has %d dates for %d rows", len(dates), len(rows))
	}
	n := len(tickers)
	data := make([]float64, 0, len(rows)*n)
	for i, r := range rows {
		if len(r) != n {
			return nil, fmt.Errorf("panel row %d has %d values, want %d", i, len(r), n)
		}
		data = append(data, r...)
	}
	return &Panel{
		Dates:   append([]time.Time(nil), dates...),
		Tickers: append([]string(nil), tickers...),
		Values:  mat.NewDense(len(rows), n, data),
	}, nil
}

// BuildPanel aligns closes into a panel ordered by u. Dates where any
// universe ticker lacks a usable close are dropped. Tickers outside u are
// ignored. A universe ticker with no usable close at all is an error.
func BuildPanel(u *Universe, closes []models.ClosePrice) (*Panel, error) {
	n := u.Len()
	byDay := make(map[time.Time][]float64)
	seen := make([]bool, n)

	for _, c := range closes {
		col, ok := u.Index(c.Ticker)
		if !ok || !usable(c.Close) {
			continue
		}
		day := util.Day(c.Date)
		row, ok := byDay[day]
		if !ok {
			row = make([]float64, n)
			for i := range row {
				row[i] = math.NaN()
			}
			byDay[day] = row
		}
		row[col] = c.Close
		seen[col] = true
	}

	var missing []string
	for i, ok := range seen {
		if !ok {
			missing = append(missing, u.tickers[i])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: no closes for %v", models.ErrMissingAssetData, missing)
	}

	dates := make([]time.Time, 0, len(byDay))
	for d, row := range byDay {
		if complete(row) {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: no date has closes for all %d tickers", models.ErrInsufficientHistory, n)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rows := make([][]float64, len(dates))
	for i, d := range dates {
		rows[i] = byDay[d]
	}
	return NewPanel(dates, u.Tickers(), rows)
}

// Rows returns the number of trading days.
func (p *Panel) Rows() int {
	r, _ := p.Values.Dims()
	return r
}

func (p *Panel) Cols() int {
	_, c := p.Values.Dims()
	return c
}

// LastDate is the most recent trading day, zero when the panel has no dates.
func (p *Panel) LastDate() time.Time {
	if len(p.Dates) == 0 {
		return time.Time{}
	}
	return p.Dates[len(p.Dates)-1]
}

func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func complete(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}
