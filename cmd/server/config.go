package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/recruiter-api/internal/config"
)

// loadAppConfig loads the application configuration from defaults, files and
// environment variables.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.Model,
		"api_key_present", cfg.LLM.APIKey != "")

	return cfg, nil
}
