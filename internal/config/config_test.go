package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  adminKey: secret
database:
  driver: mysql
  host: db.internal
  port: 3306
  user: artscan
  password: pw
  name: artscan
minio:
  endpoint: minio:9000
  bucketName: scans
embedding:
  endpoint: http://clip:8000
matching:
  threshold: 0.2
  topK: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 0.2, cfg.Matching.Threshold)
	assert.Equal(t, 10, cfg.Matching.TopK)
	assert.Equal(t, "http://clip:8000", cfg.Embedding.Endpoint)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.ScanRPM)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 512, cfg.Embedding.Dimension)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, 0.15, cfg.Matching.Threshold)
	assert.Equal(t, 5, cfg.Matching.TopK)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ADMIN_API_KEY", "admin-test")

	path := writeConfig(t, `
openai:
  apiKey: file-key
server:
  adminKey: file-admin
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "admin-test", cfg.Server.AdminKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDSNs(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db
  port: 5432
  user: u
  password: p
  name: artscan
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=artscan sslmode=disable", cfg.PostgresDSN())

	cfg.Database.Port = 3306
	assert.Equal(t, "u:p@tcp(db:3306)/artscan?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
}
