package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/pbanos/thicket"
	"github.com/pbanos/thicket/config"
	"github.com/pbanos/thicket/dataset"
	"github.com/pbanos/thicket/dataset/csv"
	"github.com/pbanos/thicket/dataset/sqldataset"
	"github.com/pbanos/thicket/dataset/sqldataset/pgadapter"
	"github.com/pbanos/thicket/dataset/sqldataset/sqlite3adapter"
	"github.com/pbanos/thicket/metrics"
	"github.com/spf13/cobra"
)

// dataCmdConfig holds the flags to read training and testing data and
// to configure training, shared by the tree and forest commands
type dataCmdConfig struct {
	*rootCmdConfig
	dataInput   string
	testInput   string
	labelColumn int
	label       string
	table       string
	delimiter   string
	header      bool
	labelBins   int

	loss           string
	samples        int
	limitingFactor string
	limit          int
	continuousInts bool
	useGreaterThan bool
	minimumGain    float64
	workers        int
}

func (dcc *dataCmdConfig) addFlags(cmd *cobra.Command) {
	def := config.Default()
	flags := cmd.Flags()
	flags.StringVarP(&(dcc.dataInput), "input", "i", "", "path to an input delimited text or SQLite3 (.db) file, or a PostgreSQL DB connection URL with data to train on (defaults to STDIN, interpreted as delimited text)")
	flags.StringVarP(&(dcc.testInput), "test", "t", "", "path or URL like input with data to test on (defaults to the training data)")
	flags.IntVar(&(dcc.labelColumn), "label-column", -1, "index of the label column of delimited text, negative indexes count from the end")
	flags.StringVar(&(dcc.label), "label", "label", "name of the label column of SQL tables")
	flags.StringVar(&(dcc.table), "table", "records", "name of the SQL table to read records from")
	flags.StringVar(&(dcc.delimiter), "delimiter", " ", "column delimiter of delimited text")
	flags.BoolVar(&(dcc.header), "header", false, "skip the first line of delimited text")
	flags.IntVar(&(dcc.labelBins), "label-bins", 0, "discretize a numeric label column into this many equal-width bins")

	flags.StringVar(&(dcc.loss), "loss", def.Loss, "impurity measure to score splits with: entropy or gini")
	flags.IntVar(&(dcc.samples), "samples", def.Samples, "number of thresholds to try on each field")
	flags.StringVar(&(dcc.limitingFactor), "limiting-factor", def.LimitingFactor, "tree measure to limit: decisions, depth or leaves")
	flags.IntVar(&(dcc.limit), "limit", def.Limit, "limit for the limiting factor")
	flags.BoolVar(&(dcc.continuousInts), "continuous-ints", def.ContinuousInts, "split int fields with thresholds instead of each of their values")
	flags.BoolVar(&(dcc.useGreaterThan), "use-greater-than", def.UseGreaterThan, "split with greater-than criteria instead of less-than ones")
	flags.Float64Var(&(dcc.minimumGain), "minimum-gain", def.MinimumGain, "gain a split must exceed to be performed")
	flags.IntVar(&(dcc.workers), "workers", def.Workers, "fields searched for splits concurrently (0 means no limit)")
}

// trainingConfig returns the configuration file contents, if any, with the
// explicitly set flags overriding them
func (dcc *dataCmdConfig) trainingConfig(cmd *cobra.Command) (*config.Config, error) {
	c := config.Default()
	if dcc.configPath != "" {
		var err error
		c, err = config.ReadFile(dcc.configPath)
		if err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("loss") {
		c.Loss = dcc.loss
	}
	if flags.Changed("samples") {
		c.Samples = dcc.samples
	}
	if flags.Changed("limiting-factor") {
		c.LimitingFactor = dcc.limitingFactor
	}
	if flags.Changed("limit") {
		c.Limit = dcc.limit
	}
	if flags.Changed("continuous-ints") {
		c.ContinuousInts = dcc.continuousInts
	}
	if flags.Changed("use-greater-than") {
		c.UseGreaterThan = dcc.useGreaterThan
	}
	if flags.Changed("minimum-gain") {
		c.MinimumGain = dcc.minimumGain
	}
	if flags.Changed("workers") {
		c.Workers = dcc.workers
	}
	return c, nil
}

func (dcc *dataCmdConfig) strategy(c *config.Config) (*thicket.TrainingStrategy, error) {
	var m *metrics.Collector
	if dcc.registry != nil {
		m = metrics.NewCollector(dcc.registry)
	}
	ts, err := c.Strategy(dcc.log, m)
	if err != nil {
		return nil, err
	}
	return ts, ts.Validate()
}

func (dcc *dataCmdConfig) trainingSet(ctx context.Context) (*dataset.Dataset, error) {
	return dcc.readDataset(ctx, dcc.dataInput)
}

// testingSet returns the testing data, or the given training data if no
// test input was given
func (dcc *dataCmdConfig) testingSet(ctx context.Context, training *dataset.Dataset) (*dataset.Dataset, error) {
	if dcc.testInput == "" {
		return training, nil
	}
	return dcc.readDataset(ctx, dcc.testInput)
}

func (dcc *dataCmdConfig) readDataset(ctx context.Context, input string) (*dataset.Dataset, error) {
	var ds *dataset.Dataset
	var err error
	switch {
	case strings.HasPrefix(input, "postgresql://") || strings.HasPrefix(input, "postgres://"):
		dcc.log.Debug().Msg("Reading records from PostgreSQL database...")
		ds, err = dcc.sqlDataset(ctx, pgadapter.Open, input)
	case strings.HasSuffix(input, ".db"):
		dcc.log.Debug().Str("path", input).Msg("Reading records from SQLite3 database...")
		ds, err = dcc.sqlDataset(ctx, sqlite3adapter.Open, input)
	default:
		var opts csv.Options
		opts, err = dcc.csvOptions()
		if err != nil {
			return nil, err
		}
		if input == "" {
			dcc.log.Debug().Msg("Reading records from STDIN...")
			ds, err = csv.Read(os.Stdin, opts)
		} else {
			dcc.log.Debug().Str("path", input).Msg("Reading records from delimited text...")
			ds, err = csv.ReadFile(input, opts)
		}
	}
	if err != nil {
		return nil, err
	}
	dcc.log.Info().Str("records", humanize.Comma(int64(ds.Count()))).Int("fields", ds.FieldCount()).Msg("Records read")
	return ds, nil
}

func (dcc *dataCmdConfig) sqlDataset(ctx context.Context, open func(string) (sqldataset.Adapter, error), input string) (*dataset.Dataset, error) {
	a, err := open(input)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return sqldataset.ReadTable(ctx, a, dcc.table, dcc.label)
}

func (dcc *dataCmdConfig) csvOptions() (csv.Options, error) {
	delimiter, size := utf8.DecodeRuneInString(dcc.delimiter)
	if size == 0 || size != len(dcc.delimiter) {
		return csv.Options{}, fmt.Errorf("delimiter %q must be a single character", dcc.delimiter)
	}
	return csv.Options{
		LabelColumn: dcc.labelColumn,
		Delimiter:   delimiter,
		Header:      dcc.header,
		LabelBins:   dcc.labelBins,
	}, nil
}
