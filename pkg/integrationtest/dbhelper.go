/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

// Package integrationtest centralizes database access for tests that need a
// real tag registry. It ensures:
//  1. database calls from different tests don't interfere, even if their
//     code under test would normally reference the same database
//  2. tests run against an in-memory sqlite3 database by default, and
//     against postgres when TID_TEST_POSTGRES holds a connection string
//  3. there's an escape switch to avoid running those tests unless
//     necessary (namely, the -test.short flag)
package integrationtest

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// PostgresEnv names the environment variable holding a postgres connection
// string. When empty, tests use sqlite3.
const PostgresEnv = "TID_TEST_POSTGRES"

var dbNamesToInstances = map[string]int{}
var dbNameLock = sync.Mutex{}

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Driver returns the database driver tests will run against
func Driver() string {
	if os.Getenv(PostgresEnv) != "" {
		return "postgres"
	}
	return "sqlite3"
}

// OpenDB returns an empty database named after t.Name(). Each call gets its
// own database, even when the same test asks twice, and it is closed when the
// test ends.
//
// With sqlite3 the database lives in memory. With postgres a schema is
// created for the test and dropped afterwards.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	dbName := strings.ToLower(invalidNameChars.ReplaceAllString(t.Name(), "_"))
	if len(dbName) > 48 {
		dbName = dbName[:48]
	}

	dbNameLock.Lock()
	dbNamesToInstances[dbName]++
	dbName = dbName + fmt.Sprintf("_%02d", dbNamesToInstances[dbName])
	dbNameLock.Unlock()
	t.Logf("using db %s", dbName)

	if Driver() == "postgres" {
		return openPostgres(t, dbName)
	}
	return openSQLite(t, dbName)
}

func openSQLite(t *testing.T, dbName string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", "file:"+dbName+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Unable to open sqlite db %s: %+v", dbName, err)
	}
	// the in-memory database disappears with its last connection
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.Ping(); err != nil {
		t.Fatalf("Unable to connect to sqlite db %s: %+v", dbName, err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func openPostgres(t *testing.T, schema string) *sql.DB {
	t.Helper()

	dataSource := os.Getenv(PostgresEnv)
	admin, err := sql.Open("postgres", dataSource)
	if err != nil {
		t.Fatalf("Unable to open postgres: %+v", err)
	}
	defer admin.Close()

	if _, err := admin.Exec("CREATE SCHEMA " + schema); err != nil {
		t.Fatalf("Unable to create schema %s: %+v", schema, err)
	}

	db, err := sql.Open("postgres", withSearchPath(t, dataSource, schema))
	if err != nil {
		t.Fatalf("Unable to open postgres schema %s: %+v", schema, err)
	}
	db.SetConnMaxLifetime(time.Minute)

	t.Cleanup(func() {
		_ = db.Close()
		cleanup, err := sql.Open("postgres", dataSource)
		if err != nil {
			t.Logf("unable to drop schema %s: %v", schema, err)
			return
		}
		defer cleanup.Close()
		if _, err := cleanup.Exec("DROP SCHEMA " + schema + " CASCADE"); err != nil {
			t.Logf("unable to drop schema %s: %v", schema, err)
		}
	})
	return db
}

// withSearchPath adds the schema to a URL style connection string
func withSearchPath(t *testing.T, dataSource, schema string) string {
	t.Helper()

	parsed, err := url.Parse(dataSource)
	if err != nil || parsed.Scheme == "" {
		// key=value form
		return dataSource + " search_path=" + schema
	}
	query := parsed.Query()
	query.Set("search_path", schema)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
