package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_GetDatabaseURL(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "eco", Password: "p@ss/word", Name: "ecoroot"}
	assert.Equal(t, "postgres://eco:p%40ss%2Fword@db:5432/ecoroot?sslmode=disable", cfg.GetDatabaseURL())

	cfg.SSLMode = "require"
	assert.Equal(t, "postgres://eco:p%40ss%2Fword@db:5432/ecoroot?sslmode=require", cfg.GetDatabaseURL())
}
