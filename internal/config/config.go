package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/artscan/internal/domain/artworks"
)

type Config struct {
	Server struct {
		Port     int    `yaml:"port"`
		AdminKey string `yaml:"adminKey"`
		ScanRPM  int    `yaml:"scanRPM"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // postgres | mysql
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Embedding struct {
		Endpoint  string `yaml:"endpoint"`
		Dimension int    `yaml:"dimension"`
		TimeoutMS int    `yaml:"timeoutMS"`
	} `yaml:"embedding"`

	OpenAI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`

	Matching struct {
		Threshold float64 `yaml:"threshold"`
		TopK      int     `yaml:"topK"`
	} `yaml:"matching"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ScanRPM == 0 {
		c.Server.ScanRPM = 30
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Embedding.Dimension == 0 {
		c.Embedding.Dimension = artworks.DefaultDimension
	}
	if c.Embedding.TimeoutMS == 0 {
		c.Embedding.TimeoutMS = 15000
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Matching.Threshold == 0 {
		c.Matching.Threshold = artworks.MatchThreshold
	}
	if c.Matching.TopK == 0 {
		c.Matching.TopK = 5
	}
	// secrets boleh datang dari env
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("ADMIN_API_KEY"); v != "" {
		c.Server.AdminKey = v
	}
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
