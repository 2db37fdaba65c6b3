package pubmed

import (
	"fmt"
)

type Config struct {
	APIBase string `mapstructure:"api_base" yaml:"api_base"` // NCBI E-utilities 基础 URL
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`   // 可选，NCBI API key
	Proxy   string `mapstructure:"proxy" yaml:"proxy"`
	Timeout int    `mapstructure:"timeout" yaml:"timeout"` // 超时时间（秒）
}

func DefaultConfig() *Config {
	return &Config{
		APIBase: "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
		Timeout: 30,
	}
}

func (c *Config) Validate() error {
	if c.APIBase == "" {
		return fmt.Errorf("api_base cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.Timeout)
	}
	return nil
}
