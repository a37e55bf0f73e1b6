// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package migrations

import (
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_DBError(t *testing.T) {
	for _, dialect := range []string{DialectPostgres, DialectSQLite} {
		t.Run(dialect, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			// goose's first statement is the version table lookup
			mock.ExpectQuery(".*").WillReturnError(errors.New("connection refused"))
			mock.ExpectExec(".*").WillReturnError(errors.New("connection refused"))

			err = Migrate(db, dialect)

			require.Error(t, err)
			assert.Contains(t, err.Error(), "migration error")
		})
	}
}

func TestMigrate_NilDB(t *testing.T) {
	var db *sql.DB

	err := Migrate(db, DialectPostgres)

	require.ErrorIs(t, err, ErrNilDB)
	assert.Contains(t, err.Error(), "db is nil")
}

func TestMigrate_UnsupportedDialect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = Migrate(db, "mysql")

	require.ErrorIs(t, err, ErrUnsupportedDialect)
}

func TestEmbeddedMigrations(t *testing.T) {
	for dialect, d := range gooseDialects {
		t.Run(dialect, func(t *testing.T) {
			files, err := fs.Glob(embedMigrations, d.dir+"/*.sql")
			require.NoError(t, err)
			require.NotEmpty(t, files)

			body, err := fs.ReadFile(embedMigrations, files[0])
			require.NoError(t, err)

			script := string(body)
			assert.True(t, strings.HasPrefix(script, "-- +goose Up"))
			assert.Contains(t, script, "-- +goose Down")
			for _, table := range []string{"roles", "identities", "identity_roles"} {
				assert.Contains(t, script, "CREATE TABLE IF NOT EXISTS "+table)
			}
			assert.Contains(t, script, "'USER'")
			assert.Contains(t, script, "'ADMIN'")
			assert.Contains(t, script, "LOWER(email)")
			assert.Contains(t, script, "LOWER(username)")
		})
	}
}
