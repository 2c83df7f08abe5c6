package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/kaicatering/kai/internal/llm"
	"github.com/kaicatering/kai/internal/notify"
	"github.com/kaicatering/kai/internal/service"
	"github.com/kaicatering/kai/internal/storage"
)

// createStorage opens the sqlite database at the configured path.
func createStorage() (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "kai", "kai.db")
	}
	return storage.NewSQLiteStorage(dbPath)
}

// createLLMClient builds the generation client from configuration.
func createLLMClient() (llm.Client, error) {
	apiKey := viper.GetString("llm.openai_api_key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found in config or OPENAI_API_KEY environment variable")
	}

	return llm.NewClient(llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      apiKey,
		Model:       viper.GetString("llm.model"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
	})
}

// createNotifier builds the Twilio SMS client from configuration.
func createNotifier() (service.Notifier, error) {
	cfg := notify.Config{
		AccountSID: viper.GetString("twilio.account_sid"),
		AuthToken:  viper.GetString("twilio.auth_token"),
		From:       viper.GetString("twilio.from_number"),
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.From == "" {
		cfg.From = os.Getenv("TWILIO_PHONE_NUMBER")
	}
	return notify.NewTwilioClient(cfg)
}

// retryOptions reads generation retry settings from configuration.
func retryOptions() service.RetryOptions {
	opts := service.RetryOptions{
		MaxAttempts:  viper.GetInt("llm.max_retries"),
		InitialDelay: viper.GetDuration("llm.retry_delay"),
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay == 0 {
		opts.InitialDelay = time.Second
	}
	return opts
}
