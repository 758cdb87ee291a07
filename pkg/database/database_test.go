package database

import (
	"coursemaster/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	cfg := &config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "cm", SSLMode: "disable"}

	cfg.Driver = "postgres"
	d, err := Dialector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	cfg.Driver = "mysql"
	d, err = Dialector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	cfg.Driver = "oracle"
	_, err = Dialector(cfg)
	assert.Error(t, err)
}
