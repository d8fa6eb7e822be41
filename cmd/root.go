package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "momster-match"
)

type Config struct {
	Server  *ServerConfig  `mapstructure:"server"`
	Ranking *RankingConfig `mapstructure:"ranking"`
	Store   *StoreConfig   `mapstructure:"store"`
	Mailer  *MailerConfig  `mapstructure:"mailer"`
	Filters *FiltersConfig `mapstructure:"filters"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	RateLimit      int `mapstructure:"rate-limit"`
	CandidateLimit int `mapstructure:"candidate-limit"`
}

type RankingConfig struct {
	Provider     string         `mapstructure:"provider"`
	Timeout      time.Duration  `mapstructure:"timeout"`
	MaxLogLength int            `mapstructure:"max-log-length"`
	Gateway      *GatewayConfig `mapstructure:"gateway"`
	Gemini       *GeminiConfig  `mapstructure:"gemini"`
}

type GatewayConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	BaseURL    string `mapstructure:"base-url"`
	Model      string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type StoreConfig struct {
	URL        string        `mapstructure:"url"`
	APIKey     string        `mapstructure:"api-key"`
	APIKeyFile string        `mapstructure:"api-key-file"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries uint64        `mapstructure:"max-retries"`
}

type MailerConfig struct {
	Region string `mapstructure:"region"`
	From   string `mapstructure:"from"`
}

type FiltersConfig struct {
	ExcludedProfiles []string `mapstructure:"excluded-profiles"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "momster-match picks the best mom to meet from a list of candidates",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"store.url":   "SUPABASE_URL",
		"server.port": "PORT",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.rate-limit", 60)
	viper.SetDefault("server.candidate-limit", 50)
	viper.SetDefault("ranking.provider", "gateway")
	viper.SetDefault("ranking.timeout", "30s")
	viper.SetDefault("ranking.max-log-length", 200)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is momster-match.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The file is optional unless given explicitly; env and defaults cover the rest.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Ranking == nil {
		config.Ranking = &RankingConfig{}
	}
	if config.Filters == nil {
		config.Filters = &FiltersConfig{}
	}

	return config, nil
}
