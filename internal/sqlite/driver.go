// Package sqlite binds the parser extractors into SQLite's function
// catalog, as table-valued functions (virtual table modules) and scalar
// functions.
//
// The table-valued functions rely on go-sqlite3's virtual table support and
// are only available when building with the sqlite_vtable tag:
//
//	go build -tags sqlite_vtable ./...
//
// The scalar functions are always registered.
package sqlite

import (
	"database/sql"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver that has all parser functions
// registered on every connection.
const DriverName = "sqlite3_norppa"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: RegisterFunctions,
	})
}

// RegisterFunctions installs the parser functions on a connection. It runs
// automatically for connections opened through DriverName but can also be
// used as a connect hook on a custom driver.
func RegisterFunctions(conn *sqlite3.SQLiteConn) error {
	if err := registerScalarFunctions(conn); err != nil {
		return err
	}

	return registerTableFunctions(conn)
}

// Open opens an SQLite database with the parser functions registered.
// Use ":memory:" for an in-memory database.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf(`failed to open sqlite database "%s": %w`, dsn, err)
	}

	return db, nil
}
