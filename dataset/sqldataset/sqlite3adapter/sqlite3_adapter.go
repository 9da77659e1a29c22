/*
Package sqlite3adapter provides an implementation of the Adapter interface
in the sqldataset package that works over a SQLite3 database.
*/
package sqlite3adapter

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pbanos/thicket/dataset/sqldataset"

	// Import of SQLite3 driver
	_ "github.com/mattn/go-sqlite3"
)

type adapter struct {
	db *sql.DB
}

/*
Open takes a path to a SQLite3 database file and returns an Adapter that
works on the database or an error.
*/
func Open(path string) (sqldataset.Adapter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &adapter{db}, nil
}

func (a *adapter) DB() *sql.DB {
	return a.db
}

func (a *adapter) ColumnName(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `"`) {
		return "", fmt.Errorf(`name '%s' is empty or contains invalid character '"'`, name)
	}
	return fmt.Sprintf(`"%s"`, name), nil
}

func (a *adapter) Close() error {
	return a.db.Close()
}
