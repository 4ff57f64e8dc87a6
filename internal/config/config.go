package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Backend holds the credentials used when a Reference points below BaseURL.
type Backend struct {
	BaseURL string `yaml:"baseUrl"`

	Auth struct {
		Header map[string]string `yaml:"header"`
		Basic  struct {
			Username string `yaml:"username"`
			Password string `yaml:"password"`
		} `yaml:"basic"`
		TLS struct {
			RootCertificates string `yaml:"rootCertificates"`
			Certificate      string `yaml:"certificate"`
			Key              string `yaml:"key"`
		} `yaml:"tls"`
	} `yaml:"auth"`
}

type LogBackend struct {
	BaseURL string            `yaml:"baseUrl"`
	Labels  map[string]string `yaml:"labels"`
}

type ListenTLS struct {
	Certificate string `yaml:"certificate"`
	Key         string `yaml:"key"`
}

type Service struct {
	Title             string   `yaml:"title"`
	Abstract          string   `yaml:"abstract"`
	Keywords          []string `yaml:"keywords"`
	Fees              string   `yaml:"fees"`
	AccessConstraints []string `yaml:"accessConstraints"`
}

type Provider struct {
	Name         string `yaml:"name"`
	Site         string `yaml:"site"`
	ContactName  string `yaml:"contactName"`
	ContactEmail string `yaml:"contactEmail"`
}

type Languages struct {
	Default   string   `yaml:"default"`
	Supported []string `yaml:"supported"`
}

// Process enables a built-in process. An empty AllowedGroups lets every
// caller execute it.
type Process struct {
	Identifier    string   `yaml:"identifier"`
	AllowedGroups []string `yaml:"allowedGroups"`
}

type Limits struct {
	// MaxRequestBytes bounds POST bodies.
	MaxRequestBytes int64 `yaml:"maxRequestBytes"`
	// MaxReferenceBytes bounds the payload fetched for one Reference input.
	MaxReferenceBytes int64 `yaml:"maxReferenceBytes"`
	ReferenceTimeout  int   `yaml:"referenceTimeoutSeconds"`
	Workers           int64 `yaml:"workers"`
}

type Config struct {
	ListenAddress  string                `yaml:"listenAddress"`
	ListenTLS      ListenTLS             `yaml:"listenTls"`
	BaseURL        string                `yaml:"baseUrl"`
	UpdateSequence string                `yaml:"updateSequence"`
	Service        Service               `yaml:"service"`
	Provider       Provider              `yaml:"provider"`
	Languages      Languages             `yaml:"languages"`
	StoragePath    string                `yaml:"storagePath"`
	JwksURL        string                `yaml:"jwksUrl"`
	Processes      []Process             `yaml:"processes"`
	Limits         Limits                `yaml:"limits"`
	Backends       map[string]Backend    `yaml:"backends"`
	LogBackend     string                `yaml:"logBackend"`
	LogBackends    map[string]LogBackend `yaml:"logBackends"`
}

// NewConfig returns a new decoded Config struct with defaults applied.
func NewConfig(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := &Config{}
	d := yaml.NewDecoder(file)
	d.SetStrict(true)
	if err := d.Decode(config); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", configPath, err)
	}

	config.SetDefaults()
	return config, nil
}

// Parse decodes a configuration document held in memory.
func Parse(b []byte) (*Config, error) {
	config := &Config{}
	if err := yaml.UnmarshalStrict(b, config); err != nil {
		return nil, err
	}
	config.SetDefaults()
	return config, nil
}

func (c *Config) SetDefaults() {
	if c.ListenAddress == "" {
		c.ListenAddress = ":8080"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost" + c.ListenAddress
	}
	if c.Service.Title == "" {
		c.Service.Title = "wpsd"
	}
	if c.Languages.Default == "" {
		c.Languages.Default = "en-US"
	}
	if len(c.Languages.Supported) == 0 {
		c.Languages.Supported = []string{c.Languages.Default}
	}
	if c.StoragePath == "" {
		c.StoragePath = "wpsd.db"
	}
	if c.Limits.MaxRequestBytes == 0 {
		c.Limits.MaxRequestBytes = 10 << 20
	}
	if c.Limits.MaxReferenceBytes == 0 {
		c.Limits.MaxReferenceBytes = 50 << 20
	}
	if c.Limits.ReferenceTimeout == 0 {
		c.Limits.ReferenceTimeout = 25
	}
	if c.Limits.Workers == 0 {
		c.Limits.Workers = 4
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("baseUrl %q must be an absolute URL", c.BaseURL))
	}
	if (c.ListenTLS.Certificate == "") != (c.ListenTLS.Key == "") {
		errs = append(errs, errors.New("listenTls needs both certificate and key"))
	}
	found := false
	for _, l := range c.Languages.Supported {
		if l == c.Languages.Default {
			found = true
		}
	}
	if !found {
		errs = append(errs, fmt.Errorf("default language %s is not supported", c.Languages.Default))
	}
	if c.Limits.Workers < 1 {
		errs = append(errs, errors.New("limits.workers must be at least 1"))
	}

	seen := map[string]bool{}
	for _, p := range c.Processes {
		if p.Identifier == "" {
			errs = append(errs, errors.New("process without identifier"))
			continue
		}
		if seen[p.Identifier] {
			errs = append(errs, fmt.Errorf("process %s configured twice", p.Identifier))
		}
		seen[p.Identifier] = true
		if len(p.AllowedGroups) > 0 && c.JwksURL == "" {
			errs = append(errs, fmt.Errorf("process %s restricts groups but no jwksUrl is configured", p.Identifier))
		}
	}

	for slug, b := range c.Backends {
		if !strings.HasPrefix(b.BaseURL, "http://") && !strings.HasPrefix(b.BaseURL, "https://") {
			errs = append(errs, fmt.Errorf("backend %s: baseUrl must be an http(s) URL", slug))
		}
		if (b.Auth.TLS.Certificate == "") != (b.Auth.TLS.Key == "") {
			errs = append(errs, fmt.Errorf("backend %s: tls needs both certificate and key", slug))
		}
	}

	if c.LogBackend != "" {
		if _, ok := c.LogBackends[c.LogBackend]; !ok {
			errs = append(errs, fmt.Errorf("logBackend %s is not defined in logBackends", c.LogBackend))
		}
	}

	return errors.Join(errs...)
}

// Process returns the configuration of an enabled process.
func (c *Config) Process(identifier string) (Process, bool) {
	for _, p := range c.Processes {
		if p.Identifier == identifier {
			return p, true
		}
	}
	return Process{}, false
}
