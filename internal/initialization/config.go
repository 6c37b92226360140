package initialization

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all orchestrator configuration.
type Config struct {
	HTTPAddress string

	// Storage selects the workflow store backend: memory, redis, or mongo.
	Storage       string
	RedisAddress  string
	RedisPassword string
	MongoURI      string
	MongoDatabase string

	// AIProvider selects the completion backend: openai, anthropic, or
	// simulated (the default when no key is configured).
	AIProvider      string
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	AIMaxTokens     int

	ResendAPIKey   string
	EmailFrom      string
	SearchEndpoint string

	MarkSkippedOnFailure bool
}

// LoadConfig loads configuration from files and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("AGENTFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envMappings := map[string]string{
		"HTTPAddress":          "AGENTFLOW_HTTP_ADDRESS",
		"Storage":              "AGENTFLOW_STORAGE",
		"RedisAddress":         "AGENTFLOW_REDIS_ADDRESS",
		"RedisPassword":        "AGENTFLOW_REDIS_PASSWORD",
		"MongoURI":             "AGENTFLOW_MONGO_URI",
		"MongoDatabase":        "AGENTFLOW_MONGO_DATABASE",
		"AIProvider":           "AGENTFLOW_AI_PROVIDER",
		"OpenAIAPIKey":         "OPENAI_API_KEY",
		"OpenAIModel":          "AGENTFLOW_OPENAI_MODEL",
		"AnthropicAPIKey":      "ANTHROPIC_API_KEY",
		"AnthropicModel":       "AGENTFLOW_ANTHROPIC_MODEL",
		"AIMaxTokens":          "AGENTFLOW_AI_MAX_TOKENS",
		"ResendAPIKey":         "RESEND_API_KEY",
		"EmailFrom":            "AGENTFLOW_EMAIL_FROM",
		"SearchEndpoint":       "AGENTFLOW_SEARCH_ENDPOINT",
		"MarkSkippedOnFailure": "AGENTFLOW_MARK_SKIPPED_ON_FAILURE",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("agentflow")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.agentflow")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTPAddress", ":8464")
	v.SetDefault("Storage", "memory")
	v.SetDefault("RedisAddress", "localhost:6379")
	v.SetDefault("MongoURI", "mongodb://localhost:27017")
	v.SetDefault("MongoDatabase", "agentflow")
	v.SetDefault("AIProvider", "")
	v.SetDefault("OpenAIModel", "gpt-4o-mini")
	v.SetDefault("AnthropicModel", "claude-sonnet-4-20250514")
	v.SetDefault("AIMaxTokens", 2048)
}
