/*
Package sqldataset provides functions to read datasets from SQL databases.

Each row of a query or table is a record: one column holds its label and
the rest its fields. Integer columns become int fields and real columns
float fields. NULL values are not supported.

Adapters for specific databases are provided in subpackages.
*/
package sqldataset
