package datasource

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setSecrets(t *testing.T, telegram, owm string) {
	t.Helper()
	t.Setenv(EnvTelegramToken, telegram)
	t.Setenv(EnvOpenWeatherMapKey, owm)
	t.Setenv(EnvWeatherAPIKey, "")
	t.Setenv(EnvZipkinURL, "")
}

func TestLoadConfigDefaults(t *testing.T) {
	setSecrets(t, "tg-token", "owm-key")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.Provider != ProviderOpenWeatherMap || config.SendTime != "00:00" || config.Timezone != "UTC" {
		t.Errorf("unexpected defaults %+v", config)
	}
	if len(config.Cities) != 3 || config.Cities[0].Name != "Dili" {
		t.Errorf("unexpected cities %+v", config.Cities)
	}
	if config.TelegramToken != "tg-token" || config.OpenWeatherMapKey != "owm-key" {
		t.Errorf("secrets not loaded from environment")
	}
}

func TestLoadConfigMissingSecrets(t *testing.T) {
	tests := []struct {
		name, telegram, owm string
	}{
		{"no telegram token", "", "owm-key"},
		{"no weather key", "tg-token", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSecrets(t, tt.telegram, tt.owm)
			if _, err := LoadConfig(""); !errors.Is(err, ErrMissingCredential) {
				t.Errorf("LoadConfig() error = %v, want ErrMissingCredential", err)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	setSecrets(t, "tg-token", "")
	t.Setenv(EnvWeatherAPIKey, "wapi-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
env: dev
provider: weatherapi
send_time: "06:30"
timezone: Asia/Jakarta
cities:
  - name: Jakarta
    lat: -6.2
    lon: 106.816666
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.Env != "dev" || config.Provider != ProviderWeatherAPI || config.SendTime != "06:30" {
		t.Errorf("unexpected config %+v", config)
	}
	if len(config.Cities) != 1 || config.Cities[0].Name != "Jakarta" || config.Cities[0].Longitude != 106.816666 {
		t.Errorf("unexpected cities %+v", config.Cities)
	}
	if _, err := NewForecastSource(config); err != nil {
		t.Errorf("NewForecastSource() error = %v", err)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	setSecrets(t, "tg-token", "owm-key")
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Errorf("LoadConfig() error = %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	base := func() *Config {
		c := DefaultConfig()
		c.TelegramToken = "tg"
		c.OpenWeatherMapKey = "owm"
		return c
	}

	tests := map[string]func(c *Config){
		"unknown provider": func(c *Config) { c.Provider = "darksky" },
		"bad send time":    func(c *Config) { c.SendTime = "25:00" },
		"bad timezone":     func(c *Config) { c.Timezone = "Mars/Olympus" },
		"no cities":        func(c *Config) { c.Cities = nil },
		"bad latitude":     func(c *Config) { c.Cities[0].Latitude = 123 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("Validate() succeeded, want error")
			}
		})
	}
}

func TestParseSendTime(t *testing.T) {
	h, m, err := ParseSendTime("07:05")
	if err != nil || h != 7 || m != 5 {
		t.Errorf("ParseSendTime(07:05) = %d, %d, %v", h, m, err)
	}
	for _, bad := range []string{"", "7", "07:60", "-1:00", "aa:bb", "07:05:00"} {
		if _, _, err := ParseSendTime(bad); err == nil {
			t.Errorf("ParseSendTime(%q) succeeded, want error", bad)
		}
	}
}
