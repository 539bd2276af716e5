// Package config carga la configuración del cliente EventApp.
//
// Orden de precedencia: defaults en código < eventapp.yaml < variables
// de entorno EVENTAPP_*. El archivo .env (si existe) se carga antes de
// resolver las variables de entorno, igual que en desarrollo local.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	API struct {
		// BaseURL del backend EventApp, ej: https://api.eventapp.example
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`

	Session struct {
		// Path del archivo de sesión. Default: <user config dir>/eventapp/session.json
		Path string `yaml:"path"`
	} `yaml:"session"`

	Cache struct {
		// TTL del cache en memoria del catálogo de eventos.
		EventsTTL string `yaml:"events_ttl"`
	} `yaml:"cache"`

	Log struct {
		Level string `yaml:"level"`
		// File: ruta del archivo de log. Default: <user config dir>/eventapp/client.log
		// La TUI es dueña de la terminal, así que no se loguea a stderr.
		File string `yaml:"file"`
	} `yaml:"log"`
}

// Load lee el YAML en path (opcional), aplica defaults y overrides de entorno.
// Si path está vacío o el archivo no existe, se parte de los defaults.
func Load(path string) (*Config, error) {
	// .env para desarrollo local; ignorado si no existe
	_ = godotenv.Load()

	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:4000"
	}
	if c.API.Timeout == "" {
		c.API.Timeout = "30s"
	}
	if c.Cache.EventsTTL == "" {
		c.Cache.EventsTTL = "2m"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Session.Path == "" {
		c.Session.Path = defaultStatePath("session.json")
	}
	if c.Log.File == "" {
		c.Log.File = defaultStatePath("client.log")
	}

	c.applyEnvOverrides()
	return &c, nil
}

// APITimeout retorna el timeout HTTP parseado (30s si es inválido).
func (c *Config) APITimeout() time.Duration {
	if d, err := time.ParseDuration(c.API.Timeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

// EventsTTL retorna el TTL del cache de eventos parseado (2m si es inválido).
func (c *Config) EventsTTL() time.Duration {
	if d, err := time.ParseDuration(c.Cache.EventsTTL); err == nil && d > 0 {
		return d
	}
	return 2 * time.Minute
}

// applyEnvOverrides: pisa el YAML con variables EVENTAPP_*.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("EVENTAPP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("EVENTAPP_API_URL"); ok {
		c.API.BaseURL = v
	}
	if v, ok := getEnvDur("EVENTAPP_API_TIMEOUT"); ok {
		c.API.Timeout = v.String()
	}
	if v, ok := getEnvStr("EVENTAPP_SESSION_PATH"); ok {
		c.Session.Path = v
	}
	if v, ok := getEnvDur("EVENTAPP_EVENTS_TTL"); ok {
		c.Cache.EventsTTL = v.String()
	}
	if v, ok := getEnvStr("EVENTAPP_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("EVENTAPP_LOG_FILE"); ok {
		c.Log.File = v
	}
}

// defaultStatePath resuelve <user config dir>/eventapp/<name>.
// Si el config dir del usuario no se puede resolver, cae al directorio actual.
func defaultStatePath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, "eventapp", name)
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
