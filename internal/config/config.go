package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	Environment   string `mapstructure:"environment"`
	DevModeBypass bool   `mapstructure:"dev_mode_bypass"`

	DB struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`

	Store struct {
		// Driver selects the persistence backend: "postgres" or "memory".
		Driver string `mapstructure:"driver"`
		// Collection is the name the contract collection is stored under.
		Collection string `mapstructure:"collection"`
		// OptimisticLocking turns on per-collection revision checks. When
		// off, concurrent writers are last-writer-wins.
		OptimisticLocking bool `mapstructure:"optimistic_locking"`
	} `mapstructure:"store"`

	Notifier struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"notifier"`

	Auth struct {
		OktaDomain   string `mapstructure:"okta_domain"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		RedirectURL  string `mapstructure:"redirect_url"`
		// LocalTokenSecret signs dev-mode HS256 tokens issued by the
		// local auto-register-or-login endpoint.
		LocalTokenSecret string `mapstructure:"local_token_secret"`
	} `mapstructure:"auth"`

	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// LoadConfig loads the configuration from a file and the environment. An
// explicit path takes precedence; otherwise config.yaml is searched for in
// the working directory and ./config.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("environment", "DEV")
	viper.SetDefault("store.driver", "postgres")
	viper.SetDefault("store.collection", "contracts")
	viper.SetDefault("db.sslmode", "disable")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// normalize issuer url (strip trailing slash if any)
	config.Auth.OktaDomain = normalizeIssuer(config.Auth.OktaDomain)

	return &config, nil
}

// normalizeIssuer puts the OIDC issuer string into a predictable form so
// users can paste the full URL from the admin console without worrying
// about trailing slashes.
func normalizeIssuer(input string) string {
	iss := strings.TrimSpace(input)
	return strings.TrimRight(iss, "/")
}
