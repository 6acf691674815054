package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/playi/play-silhouette/core"
	"github.com/playi/play-silhouette/core/providers"
	"github.com/playi/play-silhouette/storage"

	"gopkg.in/yaml.v3"
)

// ProviderConfig is the per-provider block of the YAML config. A provider is
// enabled by its block being present; api_url overrides the default endpoint
// template.
type ProviderConfig struct {
	APIURL       string   `yaml:"api_url"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Scopes       []string `yaml:"scopes"`
}

type AppConfig struct {
	Core *core.Config `yaml:",inline"`

	Microsoft *ProviderConfig `yaml:"microsoft,omitempty"`
	Google    *ProviderConfig `yaml:"google,omitempty"`
	Yandex    *ProviderConfig `yaml:"yandex,omitempty"`

	DB   DBConfig `yaml:"db"`
	Port string   `yaml:"port"`
}

type DBConfig struct {
	Type       string `yaml:"type"`
	SQLitePath string `yaml:"sqlite_path"`
}

func main() {
	configPath := getEnv("CONFIG_PATH", "config.yaml")
	appConfig := loadConfigFromYAML(configPath)

	repo := initRepository(appConfig.DB)
	providerMap := initProviders(appConfig)
	crypto, err := core.NewCryptoService(appConfig.Core.Crypto.EncryptionKey)
	if err != nil {
		slog.Error("failed to initialize crypto service", "err", err)
		os.Exit(1)
	}

	authService := core.NewAuthService(repo, appConfig.Core, providerMap, crypto)
	server := core.NewServer(authService, appConfig.Core)

	http.HandleFunc("/login", server.HandleLogin)
	http.HandleFunc("/refresh", server.HandleRefresh)
	http.HandleFunc("/logout", server.HandleLogout)
	http.HandleFunc("/logout-all", server.HandleLogoutAll)
	http.HandleFunc("/userinfo", server.HandleUserInfo)
	http.HandleFunc("/health", server.HandleHealth)

	slog.Info("starting silhouette server", "port", appConfig.Port, "providers", providerNames(providerMap))

	if err := http.ListenAndServe(":"+appConfig.Port, nil); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func loadConfigFromYAML(path string) *AppConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("failed to read config file", "path", path, "err", err)
		os.Exit(1)
	}

	var config AppConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		slog.Error("failed to parse config file", "path", path, "err", err)
		os.Exit(1)
	}

	return &config
}

func initRepository(dbConfig DBConfig) core.Repository {
	switch strings.ToLower(dbConfig.Type) {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(dbConfig.SQLitePath)
		if err != nil {
			slog.Error("failed to initialize SQLite repository", "err", err)
			os.Exit(1)
		}
		slog.Info("using SQLite database", "path", dbConfig.SQLitePath)
		return repo

	case "mock":
		slog.Info("using mock repository (in-memory)")
		return storage.NewMockRepository()

	default:
		slog.Error("unsupported DB type (supported: sqlite, mock)", "type", dbConfig.Type)
		os.Exit(1)
		return nil
	}
}

func initProviders(cfg *AppConfig) map[string]core.SocialProvider {
	providerMap := make(map[string]core.SocialProvider)

	register := func(provider *providers.OAuth2Provider, pc *ProviderConfig) {
		configured := provider.WithSettings(func(s core.OAuth2Settings) core.OAuth2Settings {
			if pc.APIURL != "" {
				s.APIURL = pc.APIURL
			}
			s.ClientID = pc.ClientID
			s.ClientSecret = pc.ClientSecret
			if len(pc.Scopes) > 0 {
				s.Scopes = pc.Scopes
			}
			return s
		})
		providerMap[configured.ID()] = configured
		slog.Info("provider initialized", "provider", configured.ID())
	}

	if cfg.Microsoft != nil {
		register(providers.NewMicrosoftProvider(), cfg.Microsoft)
	}
	if cfg.Google != nil {
		register(providers.NewGoogleProvider(), cfg.Google)
	}
	if cfg.Yandex != nil {
		register(providers.NewYandexProvider(), cfg.Yandex)
	}

	return providerMap
}

func providerNames(providerMap map[string]core.SocialProvider) []string {
	names := make([]string, 0, len(providerMap))
	for name := range providerMap {
		names = append(names, name)
	}
	return names
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
