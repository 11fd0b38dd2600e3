package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"qwen-console/internal/mathfmt"
)

// DefaultContextPrompt is the system instruction sent when the user supplies
// context. {context} is replaced with the literal context text; the model is
// told to answer only from it and to say "Я не знаю" ("I don't know") otherwise.
const DefaultContextPrompt = "Контекст: {context}; Задача: Используя только контекст ответь на вопрос. Если в контексте нет информации по вопросу, тогда ответь 'Я не знаю'"

type Config struct {
	AppPort         int           `mapstructure:"APP_PORT"`
	DatabasePath    string        `mapstructure:"DATABASE_PATH"`
	APIURL          string        `mapstructure:"API_URL"`
	APIKey          string        `mapstructure:"API_KEY"`
	DefaultModel    string        `mapstructure:"DEFAULT_MODEL"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ContextPrompt   string        `mapstructure:"CONTEXT_PROMPT"`
	MathFragments   []string      `mapstructure:"MATH_FRAGMENTS"`
	MaxContextBytes int64         `mapstructure:"MAX_CONTEXT_BYTES"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
}

// LoadConfig reads defaults, an optional .env file and the environment, in
// increasing order of precedence.
func LoadConfig() (*Config, error) {
	return load(viper.GetViper())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_PORT", 8000)
	v.SetDefault("DATABASE_PATH", "/data/qwen-console.db")
	v.SetDefault("API_URL", "http://localhost:3264/api")
	v.SetDefault("API_KEY", "")
	v.SetDefault("DEFAULT_MODEL", "qwen-max")
	v.SetDefault("REQUEST_TIMEOUT", "120s")
	v.SetDefault("CONTEXT_PROMPT", DefaultContextPrompt)
	v.SetDefault("MATH_FRAGMENTS", mathfmt.DefaultFragments)
	v.SetDefault("MAX_CONTEXT_BYTES", 1<<20)
	v.SetDefault("LOG_LEVEL", "INFO")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
