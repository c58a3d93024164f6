package commands

import (
	"time"

	"congressdata/internal/upstream"
	"congressdata/lib/configutil"
)

type SourceConfig struct {
	BaseURL string `json:"base_url"`
	// pointer so an explicit 0 survives the merge with defaults
	DelayMs *int `json:"delay_ms"`
}

func (s SourceConfig) apply(p upstream.Profile) upstream.Profile {
	if s.BaseURL != "" {
		p.BaseURL = s.BaseURL
	}
	if s.DelayMs != nil {
		p.Delay = time.Duration(*s.DelayMs) * time.Millisecond
	}
	return p
}

type CamaraConfig struct {
	BaseURL      string `json:"base_url"`
	DelayMs      *int   `json:"delay_ms"`
	PageSize     int    `json:"page_size"`
	MaxPages     int    `json:"max_pages"`
	Legislatures []int  `json:"legislatures"`
}

type Config struct {
	OutputDir          string       `json:"output_dir"`
	TimeoutSeconds     int          `json:"timeout_seconds"`
	BulkTimeoutSeconds int          `json:"bulk_timeout_seconds"`
	Legis              SourceConfig `json:"legis"`
	Adm                SourceConfig `json:"adm"`
	Camara             CamaraConfig `json:"camara"`
	CGU                SourceConfig `json:"cgu"`
}

func defaultConfig() Config {
	return Config{
		OutputDir:          "data/raw",
		TimeoutSeconds:     60,
		BulkTimeoutSeconds: 300,
		Camara: CamaraConfig{
			PageSize:     100,
			MaxPages:     500,
			Legislatures: []int{56, 57},
		},
	}
}

// loadConfig reads path and its .local override on top of the defaults, a missing file
// means defaults.
func loadConfig(path string) (Config, error) {
	return configutil.ReadOrDefault(path, defaultConfig())
}

type profiles struct {
	legis, adm, camara, cgu upstream.Profile
}

func (c Config) profiles() profiles {
	timeout := time.Duration(c.TimeoutSeconds) * time.Second

	legis := c.Legis.apply(upstream.LegisProfile())
	legis.Timeout = timeout
	adm := c.Adm.apply(upstream.AdmProfile())
	adm.Timeout = timeout

	camara := SourceConfig{BaseURL: c.Camara.BaseURL, DelayMs: c.Camara.DelayMs}.apply(upstream.CamaraProfile())
	camara.Timeout = timeout
	camara.PageSize = c.Camara.PageSize
	camara.MaxPages = c.Camara.MaxPages

	cgu := c.CGU.apply(upstream.CGUProfile())
	cgu.Timeout = time.Duration(c.BulkTimeoutSeconds) * time.Second

	return profiles{legis: legis, adm: adm, camara: camara, cgu: cgu}
}
