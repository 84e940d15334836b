package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr  string
		Debug bool
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret        string
		TokenTTLMinutes  int
		RegisterPassword string
	}
	Pagination struct {
		PageSize int
	}
	Static struct {
		Dir string
	}
	// Cache max-ages are in seconds; debug mode forces them all to 0.
	Cache struct {
		RobotsMaxAge   int
		SecurityMaxAge int
		FaviconMaxAge  int
	}
	Security struct {
		Contact string
	}
	Media struct {
		Backend   string
		LocalDir  string
		BaseURL   string
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
	Sentry struct {
		DSN string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("KORUVA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.debug", false)
	v.SetDefault("database.path", "data/koruva.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 60)
	v.SetDefault("auth.registerpassword", "")
	v.SetDefault("pagination.pagesize", 20)
	v.SetDefault("static.dir", "static")
	v.SetDefault("cache.robotsmaxage", 86400)
	v.SetDefault("cache.securitymaxage", 86400)
	v.SetDefault("cache.faviconmaxage", 604800)
	v.SetDefault("security.contact", "mailto:security@localhost")
	v.SetDefault("media.backend", "local")
	v.SetDefault("media.localdir", "data/media")
	v.SetDefault("media.baseurl", "/media")
	v.SetDefault("media.bucket", "")
	v.SetDefault("media.keyprefix", "media")
	v.SetDefault("media.region", "us-east-1")
	v.SetDefault("media.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("sentry.dsn", "")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Server.Debug {
		cfg.Cache.RobotsMaxAge = 0
		cfg.Cache.SecurityMaxAge = 0
		cfg.Cache.FaviconMaxAge = 0
	}

	return cfg, nil
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
