package sqldataset

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pbanos/thicket/dataset"
	"github.com/pbanos/thicket/feature"
)

/*
Adapter is an interface for a SQL database from which datasets can be read.
*/
type Adapter interface {
	// DB returns the database connection pool
	DB() *sql.DB
	// ColumnName takes the name of a table or column and returns it
	// quoted for use in queries, or an error if it cannot be used.
	ColumnName(name string) (string, error)
	// Close releases the connections to the database
	Close() error
}

/*
ReadTable takes a context, an adapter, the name of a table and the name of
its label column, and returns a dataset with a record for each row of the
table, with its other columns as fields in table order.
*/
func ReadTable(ctx context.Context, a Adapter, table, labelColumn string) (*dataset.Dataset, error) {
	t, err := a.ColumnName(table)
	if err != nil {
		return nil, err
	}
	return Read(ctx, a.DB(), fmt.Sprintf("SELECT * FROM %s", t), labelColumn)
}

/*
Read takes a context, a database, a query and the name of the label column
in its results, and returns a dataset with a record for each row the query
returns, with the other columns as fields in result order.
*/
func Read(ctx context.Context, db *sql.DB, query, labelColumn string) (*dataset.Dataset, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}
	lc := -1
	for i, c := range columns {
		if c == labelColumn {
			lc = i
			break
		}
	}
	if lc < 0 {
		return nil, fmt.Errorf("label column %q not found among %v", labelColumn, columns)
	}
	var records []dataset.Record
	raw := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for n := 0; rows.Next(); n++ {
		err = rows.Scan(dest...)
		if err != nil {
			return nil, fmt.Errorf("scanning row %d: %w", n, err)
		}
		var label string
		values := make([]feature.Value, 0, len(columns)-1)
		for i, v := range raw {
			if i == lc {
				label, err = labelFrom(v)
			} else {
				var fv feature.Value
				fv, err = valueFrom(v)
				values = append(values, fv)
			}
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", n, columns[i], err)
			}
		}
		records = append(records, dataset.NewRecord(label, values...))
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return dataset.New(records)
}

func valueFrom(v any) (feature.Value, error) {
	switch v := v.(type) {
	case int64:
		return feature.IntValue(v), nil
	case float64:
		return feature.FloatValue(v), nil
	case []byte:
		return feature.ParseValue(string(v))
	case string:
		return feature.ParseValue(v)
	case nil:
		return feature.Value{}, fmt.Errorf("NULL values are not supported")
	}
	return feature.Value{}, fmt.Errorf("unsupported value %v of type %T", v, v)
}

func labelFrom(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case nil:
		return "", fmt.Errorf("NULL labels are not supported")
	}
	return "", fmt.Errorf("unsupported label %v of type %T", v, v)
}
