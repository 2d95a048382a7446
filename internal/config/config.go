package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/imdario/mergo"
	"github.com/robgonnella/ipscannr/internal/host"
	"github.com/robgonnella/ipscannr/internal/targets"
	"gopkg.in/yaml.v3"
)

// FallbackRange range used when the local network cannot be detected
const FallbackRange = "192.168.1.0/24"

// Config represents the data structure of our user provided yaml configuration
type Config struct {
	DefaultRange     string        `yaml:"defaultRange" validate:"required,iprange"`
	Ports            []uint16      `yaml:"ports" validate:"required,min=1,dive,min=1"`
	DiscoveryPorts   []uint16      `yaml:"discoveryPorts" validate:"required,min=1,dive,min=1"`
	DiscoveryWorkers int           `yaml:"discoveryWorkers" validate:"min=1,max=4096"`
	PortWorkers      int           `yaml:"portWorkers" validate:"min=1,max=4096"`
	DNSWorkers       int           `yaml:"dnsWorkers" validate:"min=1,max=256"`
	ProbeTimeout     time.Duration `yaml:"probeTimeout" validate:"min=1ms"`
	HostTimeout      time.Duration `yaml:"hostTimeout" validate:"min=1ms"`
	PortTimeout      time.Duration `yaml:"portTimeout" validate:"min=1ms"`
	DNSTimeout       time.Duration `yaml:"dnsTimeout" validate:"min=1ms"`
	ICMP             bool          `yaml:"icmp"`
	ResolveHostnames bool          `yaml:"resolveHostnames"`
	DetectMAC        bool          `yaml:"detectMAC"`
	ScanPorts        bool          `yaml:"scanPorts"`
	History          bool          `yaml:"history"`
}

// Default returns the built in configuration
func Default() Config {
	ports := make([]uint16, len(host.CommonPorts))
	copy(ports, host.CommonPorts)

	discoveryPorts := make([]uint16, len(host.DiscoveryPorts))
	copy(discoveryPorts, host.DiscoveryPorts)

	return Config{
		DefaultRange:     FallbackRange,
		Ports:            ports,
		DiscoveryPorts:   discoveryPorts,
		DiscoveryWorkers: 100,
		PortWorkers:      50,
		DNSWorkers:       20,
		ProbeTimeout:     500 * time.Millisecond,
		HostTimeout:      2 * time.Second,
		PortTimeout:      500 * time.Millisecond,
		DNSTimeout:       time.Second,
		ICMP:             true,
		ResolveHostnames: true,
		DetectMAC:        true,
		ScanPorts:        true,
		History:          true,
	}
}

// Load reads the yaml config at confPath on top of defaults. A missing
// file is not an error, defaults are returned as is.
func Load(confPath string, defaults Config) (*Config, error) {
	conf := defaults

	raw, err := os.ReadFile(confPath)

	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if err == nil {
		if err := yaml.Unmarshal(raw, &conf); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", confPath, err)
		}
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

// Apply merges every non-zero field of overrides into the config
func (c *Config) Apply(overrides Config) error {
	if err := mergo.Merge(c, overrides, mergo.WithOverride); err != nil {
		return err
	}

	return c.Validate()
}

// Validate checks pool sizes, timeouts, and the default range
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Write writes the config as yaml to confPath
func Write(confPath string, conf Config) error {
	file, err := os.Create(confPath)

	if err != nil {
		return err
	}

	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)

	return encoder.Encode(conf)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterValidation("iprange", func(fl validator.FieldLevel) bool {
		_, err := targets.Parse(fl.Field().String())
		return err == nil
	})

	return v
}
