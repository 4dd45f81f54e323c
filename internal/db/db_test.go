package db

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/logging"
	"findash/internal/model"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "", logging.Discard())
	assert.ErrorContains(t, err, "unsupported")
}

func TestOpenAndMigrate_SQLite(t *testing.T) {
	gdb, err := Open(DriverSQLite, "file::memory:", logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })

	require.NoError(t, Migrate(gdb, false, logging.Discard()))
	assert.True(t, gdb.Migrator().HasTable(&model.User{}))
	assert.True(t, gdb.Migrator().HasTable(&model.Transaction{}))

	require.NoError(t, gdb.Create(&model.User{Email: "a@example.com", FirstName: "A", LastName: "B", PasswordHash: "x"}).Error)

	require.NoError(t, Migrate(gdb, true, logging.Discard()))
	var count int64
	require.NoError(t, gdb.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count, "reset drops existing rows")
}

func TestOpen_LogsThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	log := logging.WithComponent(logging.New(logging.Config{Level: "info", Format: "json", Output: &buf}), logging.ComponentStorage)

	gdb, err := Open(DriverSQLite, "file::memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })
	require.NoError(t, Migrate(gdb, false, logging.Discard()))
	buf.Reset()

	var user model.User
	assert.Error(t, gdb.Where("email = ?", "ghost@example.com").First(&user).Error)
	assert.Empty(t, buf.String(), "record not found is not logged")

	assert.Error(t, gdb.Exec("SELECT * FROM no_such_table").Error)
	out := buf.String()
	assert.Contains(t, out, "no_such_table")
	assert.Contains(t, out, `"component":"storage"`)
	assert.Contains(t, out, `"level":"WARN"`)
	assert.NotContains(t, out, "\x1b[", "no terminal colour codes")
}
