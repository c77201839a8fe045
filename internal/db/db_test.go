package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestConnectSQLiteAndMigrate(t *testing.T) {
	database, err := Connect(DriverSQLite, ":memory:", logger.Silent)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, RunMigrations(database))
	assert.NoError(t, database.Ping())

	migrator := database.Migrator()
	assert.True(t, migrator.HasTable(&Book{}))
	assert.True(t, migrator.HasIndex(&Book{}, "idx_books_isbn"))
	assert.True(t, migrator.HasColumn(&Book{}, "publication_year"))
}

func TestConnectUnsupportedDriver(t *testing.T) {
	_, err := Connect("mysql", "root@/library", logger.Silent)
	assert.EqualError(t, err, `unsupported database driver "mysql"`)
}
