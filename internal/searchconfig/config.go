// Package searchconfig loads the order-search space and baseline model from
// YAML.
package searchconfig

import (
	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/search"
)

// Config 차수 탐색 설정 (config/search/*.yaml)
type Config struct {
	Meta     Meta     `yaml:"meta" json:"meta"`
	Search   Search   `yaml:"search" json:"search"`
	Baseline Baseline `yaml:"baseline" json:"baseline"`
	Report   Report   `yaml:"report" json:"report"`
}

// Meta 메타 정보
type Meta struct {
	ID      string `yaml:"id" json:"id" validate:"required"`
	Version string `yaml:"version" json:"version" validate:"required"`
}

// Search grid and fit settings
type Search struct {
	P         RangeSpec `yaml:"p" json:"p"`
	D         RangeSpec `yaml:"d" json:"d"`
	Q         RangeSpec `yaml:"q" json:"q"`
	SeasonalP RangeSpec `yaml:"seasonal_p" json:"seasonal_p"`
	SeasonalD RangeSpec `yaml:"seasonal_d" json:"seasonal_d"`
	SeasonalQ RangeSpec `yaml:"seasonal_q" json:"seasonal_q"`
	Period    int       `yaml:"period" json:"period" validate:"gte=2,lte=52"`
	MaxIter   int       `yaml:"max_iter" json:"max_iter" validate:"gte=1,lte=10000"`
	Workers   int       `yaml:"workers" json:"workers" validate:"gte=0"` // 0 = NumCPU
}

// RangeSpec inclusive bounds
type RangeSpec struct {
	Min int `yaml:"min" json:"min" validate:"gte=0,lte=5"`
	Max int `yaml:"max" json:"max" validate:"gte=0,lte=5,gtefield=Min"`
}

// Baseline 비교 기준 모델 (운영 모델)
type Baseline struct {
	Order         [3]int `yaml:"order" json:"order" validate:"dive,gte=0"`
	SeasonalOrder [3]int `yaml:"seasonal_order" json:"seasonal_order" validate:"dive,gte=0"` // P, D, Q; m = search.period
}

// Report 출력 설정
type Report struct {
	TopN int `yaml:"top_n" json:"top_n" validate:"gte=1,lte=100"`
}

func (r RangeSpec) toRange() search.Range {
	return search.Range{Min: r.Min, Max: r.Max}
}

// Ranges converts the grid to search.Ranges.
func (c *Config) Ranges() search.Ranges {
	s := c.Search
	return search.Ranges{
		P: s.P.toRange(), D: s.D.toRange(), Q: s.Q.toRange(),
		SP: s.SeasonalP.toRange(), SD: s.SeasonalD.toRange(), SQ: s.SeasonalQ.toRange(),
	}
}

// Options returns search options; the caller may add OnProgress.
func (c *Config) Options() search.Options {
	baseline := c.BaselineOrder()
	return search.Options{
		Period:   c.Search.Period,
		MaxIter:  c.Search.MaxIter,
		Workers:  c.Search.Workers,
		Baseline: &baseline,
	}
}

// BaselineOrder returns the baseline with the search period.
func (c *Config) BaselineOrder() contracts.ModelOrder {
	o, so := c.Baseline.Order, c.Baseline.SeasonalOrder
	return contracts.ModelOrder{
		P: o[0], D: o[1], Q: o[2],
		SP: so[0], SD: so[1], SQ: so[2],
		Period: c.Search.Period,
	}
}

// Default mirrors config/search/default.yaml
func Default() *Config {
	r := RangeSpec{Min: 0, Max: 2}
	return &Config{
		Meta: Meta{ID: "default", Version: "1"},
		Search: Search{
			P: r, D: r, Q: r, SeasonalP: r, SeasonalD: r, SeasonalQ: r,
			Period:  contracts.SeasonalPeriod,
			MaxIter: 50,
		},
		Baseline: Baseline{Order: [3]int{1, 1, 1}, SeasonalOrder: [3]int{1, 1, 1}},
		Report:   Report{TopN: 10},
	}
}
