package main

import (
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("libraryd"))
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, kctx
}

func TestServeIsDefaultCommand(t *testing.T) {
	_, kctx := parse(t)
	assert.Equal(t, "serve", kctx.Command())
}

func TestMigrateCommandWithEnvFile(t *testing.T) {
	cli, kctx := parse(t, "--env-file", "/etc/library/env", "migrate")
	assert.Equal(t, "migrate", kctx.Command())
	assert.Equal(t, "/etc/library/env", cli.EnvFile)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, gormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, gormLogLevel("info"))
	assert.Equal(t, gormlogger.Warn, gormLogLevel(""))
}
