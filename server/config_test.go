package server_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidlang/pegrun/server"
)

func TestParseDBConnString_SQLite(t *testing.T) {
	db, err := server.ParseDBConnString("sqlite:/var/lib/pegrun")
	require.NoError(t, err)
	assert.Equal(t, server.DatabaseSQLite, db.Type)
	assert.Equal(t, "/var/lib/pegrun", db.DataDir)
}

func TestParseDBConnString_MissingPath(t *testing.T) {
	_, err := server.ParseDBConnString("sqlite:")
	assert.Error(t, err)
}

func TestParseDBConnString_UnknownEngine(t *testing.T) {
	_, err := server.ParseDBConnString("postgres:foo")
	assert.Error(t, err)
}

func TestConfig_FillDefaults(t *testing.T) {
	cfg := server.Config{}.FillDefaults()

	assert.NotEmpty(t, cfg.TokenSecret)
	assert.Equal(t, server.DatabaseSQLite, cfg.DB.Type)
	assert.Equal(t, 1000, cfg.UnauthDelayMillis)
	assert.Equal(t, time.Second, cfg.UnauthDelay())
}

func TestConfig_Validate_SecretTooShort(t *testing.T) {
	cfg := server.Config{
		TokenSecret: []byte("too-short"),
		DB:          server.Database{Type: server.DatabaseSQLite, DataDir: "/tmp/pegrun"},
	}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestConfig_Validate_SecretTooLong(t *testing.T) {
	longSecret := make([]byte, server.MaxSecretSize+1)
	cfg := server.Config{
		TokenSecret: longSecret,
		DB:          server.Database{Type: server.DatabaseSQLite, DataDir: "/tmp/pegrun"},
	}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestConfig_Validate_OK(t *testing.T) {
	cfg := server.Config{}.FillDefaults()
	cfg.DB.DataDir = "/tmp/pegrun"
	assert.NoError(t, cfg.Validate())
}

func TestDatabase_Validate_SQLiteRequiresDataDir(t *testing.T) {
	db := server.Database{Type: server.DatabaseSQLite}
	assert.Error(t, db.Validate())
}
