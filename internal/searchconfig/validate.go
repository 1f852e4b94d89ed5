package searchconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/salescast/internal/contracts"
)

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// maxCandidates above this the search takes too long to be interactive
const maxCandidates = 5000

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags, then cross-field rules.
// Returns contracts.ValidationError on the first failure.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return contracts.ValidationError{
				Field:   fieldPath(fe.Namespace()),
				Message: fmt.Sprintf("failed %q (%s)", fe.Tag(), fe.Param()),
			}
		}
		return err
	}

	if n := cfg.Ranges().Size(); n > maxCandidates {
		return contracts.ValidationError{
			Field:   "search",
			Message: fmt.Sprintf("grid has %d candidates (max %d)", n, maxCandidates),
		}
	}
	if err := cfg.BaselineOrder().Validate(); err != nil {
		return contracts.ValidationError{Field: "baseline", Message: err.Error()}
	}
	return nil
}

// Warnings reports recommended-practice violations.
func Warnings(cfg *Config) []Warning {
	var ws []Warning
	if !cfg.Ranges().Contains(cfg.BaselineOrder()) {
		ws = append(ws, Warning{"BASELINE_OUTSIDE_GRID", "baseline order is not in the search grid; its rank will be 0"})
	}
	if cfg.Search.D.Max > 2 || cfg.Search.SeasonalD.Max > 2 {
		ws = append(ws, Warning{"HIGH_DIFFERENCING", "differencing above 2 rarely helps monthly sales"})
	}
	if cfg.Search.MaxIter < 50 {
		ws = append(ws, Warning{"LOW_MAX_ITER", "max_iter below 50 may leave fits unconverged"})
	}
	return ws
}

// "Config.Search.SeasonalP.Max" -> "search.seasonal_p.max"
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = toSnake(p)
	}
	return strings.Join(parts, ".")
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
