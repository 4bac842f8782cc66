package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/trade-journal/pkg/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	suite.T().Setenv(EnvJWTSecret, "unit-test-secret")
	suite.T().Setenv(EnvQuoteAPIKey, "")
	suite.T().Setenv(EnvQuoteAPISecret, "")
}

func (suite *ConfigTestSuite) writeConfig(content string) string {
	path := filepath.Join(suite.T().TempDir(), "config.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	return path
}

func (suite *ConfigTestSuite) TestLoadDefaults() {
	cfg, err := Load("")
	suite.Require().NoError(err)

	suite.Equal(":8080", cfg.Addr)
	suite.Equal("journal.duckdb", cfg.DatabasePath)
	suite.Equal(Duration(24*time.Hour), cfg.TokenTTL)
	suite.Equal("unit-test-secret", cfg.JWTSecret)
	suite.Empty(cfg.Quote.Provider)
}

func (suite *ConfigTestSuite) TestLoadFile() {
	path := suite.writeConfig(`
addr: ":9090"
database_path: ":memory:"
token_ttl: 1h
quote:
  provider: polygon
`)
	suite.T().Setenv(EnvQuoteAPIKey, "pk-test")

	cfg, err := Load(path)
	suite.Require().NoError(err)

	suite.Equal(":9090", cfg.Addr)
	suite.Equal(":memory:", cfg.DatabasePath)
	suite.Equal(Duration(time.Hour), cfg.TokenTTL)
	suite.Equal("polygon", cfg.Quote.Provider)
	suite.Equal("pk-test", cfg.Quote.APIKey)
}

func (suite *ConfigTestSuite) TestMissingSecret() {
	suite.T().Setenv(EnvJWTSecret, "")

	_, err := Load("")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestUnknownQuoteProvider() {
	path := suite.writeConfig(`
addr: ":8080"
database_path: ":memory:"
quote:
  provider: robinhood
`)

	_, err := Load(path)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestUnreadableFile() {
	_, err := Load(filepath.Join(suite.T().TempDir(), "absent.yaml"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
