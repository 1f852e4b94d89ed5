package config_test

import (
	"fmt"

	"github.com/wonny/salescast/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Forecast horizon: %d months\n", cfg.Forecast.Horizon)
	fmt.Printf("Model store: %s\n", cfg.Store.Backend)
}
