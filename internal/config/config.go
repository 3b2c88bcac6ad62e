// Package config resolves runtime settings from an optional HCL file, an
// optional .env file and the process environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/joho/godotenv"
)

const (
	// DefaultFile is read when present and no file is named explicitly.
	DefaultFile = "pptxpalette.hcl"
	// DefaultEnvFile is read when present.
	DefaultEnvFile = ".env"

	defaultListen      = "127.0.0.1:8080"
	defaultMaxUploadMB = 64
	maxUploadMBLimit   = 1024

	// MaxLogVerbosity is the most verbose commonlog level accepted.
	MaxLogVerbosity = 4
)

// Config holds the settings of the pptxpalette binaries.
type Config struct {
	Listen       string
	MaxUploadMB  int
	LogVerbosity int
	LogFile      string
	Metrics      bool
}

// fileConfig is the HCL file layout:
//
//	server {
//	  listen        = "127.0.0.1:8080"
//	  max_upload_mb = 64
//	  metrics       = true
//	}
//	log {
//	  verbosity = 1
//	  file      = "pptxpalette.log"
//	}
type fileConfig struct {
	Server *serverBlock `hcl:"server,block"`
	Log    *logBlock    `hcl:"log,block"`
}

type serverBlock struct {
	Listen      *string `hcl:"listen,optional"`
	MaxUploadMB *int    `hcl:"max_upload_mb,optional"`
	Metrics     *bool   `hcl:"metrics,optional"`
}

type logBlock struct {
	Verbosity *int    `hcl:"verbosity,optional"`
	File      *string `hcl:"file,optional"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Listen:       defaultListen,
		MaxUploadMB:  defaultMaxUploadMB,
		LogVerbosity: 1,
		Metrics:      true,
	}
}

// Load resolves the configuration. path names the HCL file; when empty,
// DefaultFile is used if it exists. envFile works the same way for DefaultEnvFile.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	src, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	file, diags := hclsyntax.ParseConfig(src, path, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return fmt.Errorf("parsing HCL: %s", diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return fmt.Errorf("decoding %s: %s", path, diags.Error())
	}

	if s := fc.Server; s != nil {
		if s.Listen != nil {
			c.Listen = *s.Listen
		}
		if s.MaxUploadMB != nil {
			c.MaxUploadMB = *s.MaxUploadMB
		}
		if s.Metrics != nil {
			c.Metrics = *s.Metrics
		}
	}
	if l := fc.Log; l != nil {
		if l.Verbosity != nil {
			c.LogVerbosity = *l.Verbosity
		}
		if l.File != nil {
			c.LogFile = *l.File
		}
	}
	return nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading env file: %w", err)
	}
	// Variables already set in the environment win over the file.
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup("PPTXPALETTE_LISTEN"); ok {
		c.Listen = v
	}
	if v, ok := lookup("PPTXPALETTE_LOG_FILE"); ok {
		c.LogFile = v
	}
	if v, ok := lookup("PPTXPALETTE_MAX_UPLOAD_MB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PPTXPALETTE_MAX_UPLOAD_MB: %w", err)
		}
		c.MaxUploadMB = n
	}
	if v, ok := lookup("PPTXPALETTE_LOG_VERBOSITY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PPTXPALETTE_LOG_VERBOSITY: %w", err)
		}
		c.LogVerbosity = n
	}
	if v, ok := lookup("PPTXPALETTE_METRICS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PPTXPALETTE_METRICS: %w", err)
		}
		c.Metrics = b
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Validate checks the resolved settings.
func (c *Config) Validate() error {
	_, port, err := net.SplitHostPort(c.Listen)
	if err != nil {
		return fmt.Errorf("listen address %q: %w", c.Listen, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("listen address %q: port must be between 0 and 65535", c.Listen)
	}
	if c.MaxUploadMB < 1 || c.MaxUploadMB > maxUploadMBLimit {
		return fmt.Errorf("max upload size must be between 1 and %d MB, got %d", maxUploadMBLimit, c.MaxUploadMB)
	}
	if c.LogVerbosity < -1 || c.LogVerbosity > MaxLogVerbosity {
		return fmt.Errorf("log verbosity must be between -1 and %d, got %d", MaxLogVerbosity, c.LogVerbosity)
	}
	return nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
