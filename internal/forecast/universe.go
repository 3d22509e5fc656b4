package forecast

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk description of the asset universe a model was
// trained on. Ticker order is the model's feature order.
type Manifest struct {
	Version    string   `yaml:"version" json:"version" validate:"required"`
	WindowSize int      `yaml:"window_size" json:"window_size" validate:"gt=0"`
	Horizon    int      `yaml:"horizon" json:"horizon" validate:"gt=0"`
	Tickers    []string `yaml:"tickers" json:"tickers" validate:"required,min=1,dive,required"`
}

// Universe is an immutable, ordered, versioned ticker set.
type Universe struct {
	version    string
	windowSize int
	horizon    int
	tickers    []string
	index      map[string]int
}

var manifestValidator = validator.New()

// LoadUniverse reads and validates a universe manifest file.
func LoadUniverse(path string) (*Universe, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse universe: %w", err)
	}
	return NewUniverse(m)
}

// NewUniverse validates m and builds a Universe. Tickers are trimmed and
// upper-cased; blanks and duplicates are rejected.
func NewUniverse(m Manifest) (*Universe, error) {
	if err := manifestValidator.Struct(m); err != nil {
		return nil, fmt.Errorf("invalid universe manifest: %w", err)
	}

	u := &Universe{
		version:    m.Version,
		windowSize: m.WindowSize,
		horizon:    m.Horizon,
		tickers:    make([]string, 0, len(m.Tickers)),
		index:      make(map[string]int, len(m.Tickers)),
	}
	for i, raw := range m.Tickers {
		t := NormalizeTicker(raw)
		if t == "" {
			return nil, fmt.Errorf("invalid universe manifest: ticker %d is blank", i)
		}
		if prev, dup := u.index[t]; dup {
			return nil, fmt.Errorf("invalid universe manifest: ticker %s repeated at %d and %d", t, prev, i)
		}
		u.index[t] = i
		u.tickers = append(u.tickers, t)
	}
	return u, nil
}

// NormalizeTicker trims and upper-cases a symbol.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func (u *Universe) Version() string { return u.version }
func (u *Universe) WindowSize() int { return u.windowSize }
func (u *Universe) Horizon() int    { return u.horizon }
func (u *Universe) Len() int        { return len(u.tickers) }

// Tickers returns a copy in feature order.
func (u *Universe) Tickers() []string {
	return append([]string(nil), u.tickers...)
}

// Index returns the feature column of ticker.
func (u *Universe) Index(ticker string) (int, bool) {
	i, ok := u.index[NormalizeTicker(ticker)]
	return i, ok
}

func (u *Universe) Contains(ticker string) bool {
	_, ok := u.Index(ticker)
	return ok
}

// Manifest returns the universe in its serialisable form.
func (u *Universe) Manifest() Manifest {
	return Manifest{
		Version:    u.version,
		WindowSize: u.windowSize,
		Horizon:    u.horizon,
		Tickers:    u.Tickers(),
	}
}
