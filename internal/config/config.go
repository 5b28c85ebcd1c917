package config

import (
	"os"
	"slices"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"

	"github.com/totegamma/catalog"
	"github.com/totegamma/catalog/internal/domain"
	"github.com/totegamma/catalog/schemas"
)

type Config struct {
	Server  Server        `yaml:"server"`
	Catalog domain.Config `yaml:"catalog"`
	Harvest Harvest       `yaml:"harvest"`
}

type Server struct {
	Addr          string `yaml:"addr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Harvest struct {
	GeonetworkURL string `yaml:"geonetworkUrl"`
	BoxPolicy     string `yaml:"boxPolicy"` // first, envelope
	PageSize      int    `yaml:"pageSize"`

	// ---
	Policy domain.BoxPolicy `yaml:"-"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, errors.Wrap(err, "config.Load: decode failed")
	}

	if err := config.applyDefaults(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) applyDefaults() error {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Catalog.SpecVersion == "" {
		c.Catalog.SpecVersion = catalog.SpecVersion
	}
	if c.Catalog.PageSize <= 0 {
		c.Catalog.PageSize = domain.DefaultPageSize
	}
	if c.Harvest.PageSize <= 0 {
		c.Harvest.PageSize = c.Catalog.PageSize
	}
	if !slices.Contains(schemas.SpecificationVersions(), c.Catalog.SpecVersion) {
		return errors.Errorf("config: no embedded schema for catalog.specVersion %q", c.Catalog.SpecVersion)
	}
	if c.Catalog.BaseURL == "" {
		return errors.New("config: catalog.baseUrl is required")
	}

	policy, err := domain.ParseBoxPolicy(c.Harvest.BoxPolicy)
	if err != nil {
		return errors.Wrap(err, "config: invalid harvest.boxPolicy")
	}
	c.Harvest.Policy = policy

	return nil
}
