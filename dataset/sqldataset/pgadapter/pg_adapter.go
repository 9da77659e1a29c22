/*
Package pgadapter provides an implementation of the Adapter interface in
the sqldataset package that works over a PostgreSQL database.
*/
package pgadapter

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/pbanos/thicket/dataset/sqldataset"
)

type adapter struct {
	db *sql.DB
}

/*
Open takes a PostgreSQL database connection URL and returns an Adapter
that works on the database or an error.
*/
func Open(url string) (sqldataset.Adapter, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	return &adapter{db}, nil
}

func (a *adapter) DB() *sql.DB {
	return a.db
}

func (a *adapter) ColumnName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty name")
	}
	return pq.QuoteIdentifier(name), nil
}

func (a *adapter) Close() error {
	return a.db.Close()
}
