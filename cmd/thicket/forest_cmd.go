package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pbanos/thicket/forest"
	"github.com/spf13/cobra"
)

type forestCmdConfig struct {
	dataCmdConfig
	size         int
	hiddenFields int
	seed         uint64
	concurrency  int
	classify     bool
}

func forestCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &forestCmdConfig{dataCmdConfig: dataCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "forest",
		Short: "Grow a random forest and test it",
		Long:  `Grow a forest of decision trees, each blind to some random fields of a set of data, and test its accuracy against a test set of data`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			c, err := config.trainingConfig(cmd)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			flags := cmd.Flags()
			if flags.Changed("size") {
				c.Forest.Size = config.size
			}
			if flags.Changed("hidden-fields") {
				c.Forest.HiddenFields = config.hiddenFields
			}
			if flags.Changed("seed") {
				c.Forest.Seed = &config.seed
			}
			err = c.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ts, err := config.strategy(c)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			trainingSet, err := config.trainingSet(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading training set: %v\n", err)
				os.Exit(2)
			}
			opts := []forest.Option{forest.WithLogger(config.log)}
			if c.Forest.Seed != nil {
				opts = append(opts, forest.WithSeed(*c.Forest.Seed))
			}
			if config.concurrency > 0 {
				opts = append(opts, forest.WithConcurrency(config.concurrency))
			}
			f, err := forest.New(trainingSet, opts...)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			config.log.Info().Int("trees", c.Forest.Size).Int("hidden-fields", c.Forest.HiddenFields).Stringer("policy", ts.Policy).Msg("Growing forest...")
			start := time.Now()
			err = f.TrainBlindForest(ctx, c.Forest.Size, c.Forest.HiddenFields, ts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the forest: %v\n", err)
				os.Exit(4)
			}
			config.log.Info().Int("trees", f.TreeCount()).Str("records", humanize.Comma(int64(f.DatasetSize()))).Str("took", humanize.RelTime(start, time.Now(), "", "")).Msg("Done")
			testingSet, err := config.testingSet(ctx, trainingSet)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading testing set: %v\n", err)
				os.Exit(5)
			}
			if config.classify {
				labels, err := f.ClassifyAll(testingSet.Refs())
				if err != nil {
					fmt.Fprintf(os.Stderr, "classifying: %v\n", err)
					os.Exit(6)
				}
				for i, l := range labels {
					fmt.Printf("%v => %s\n", testingSet.Record(i), l)
				}
			}
			accuracy, err := f.Test(testingSet.Refs())
			if err != nil {
				fmt.Fprintf(os.Stderr, "testing forest: %v\n", err)
				os.Exit(7)
			}
			fmt.Printf("Accuracy: %.2f%% on %s records\n", accuracy*100, humanize.Comma(int64(testingSet.Count())))
		},
	}
	config.addFlags(cmd)
	cmd.Flags().IntVar(&(config.size), "size", 10, "number of trees of the forest")
	cmd.Flags().IntVar(&(config.hiddenFields), "hidden-fields", 1, "number of random fields hidden from each tree")
	cmd.Flags().Uint64Var(&(config.seed), "seed", 0, "seed for the random field subsets (random by default)")
	cmd.Flags().IntVar(&(config.concurrency), "concurrency", 0, "number of trees grown at the same time (defaults to GOMAXPROCS)")
	cmd.Flags().BoolVar(&(config.classify), "classify", false, "print the label the forest gives each testing record")
	return cmd
}
