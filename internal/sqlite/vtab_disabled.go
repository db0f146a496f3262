//go:build !sqlite_vtable && !vtable

package sqlite

import (
	sqlite3 "github.com/mattn/go-sqlite3"
)

// Table-valued functions need go-sqlite3's virtual table support, which is
// only compiled in with the sqlite_vtable build tag. Without it only the
// scalar functions are registered.
func registerTableFunctions(conn *sqlite3.SQLiteConn) error {
	return nil
}
