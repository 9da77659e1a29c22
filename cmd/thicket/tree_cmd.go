package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pbanos/thicket"
	"github.com/pbanos/thicket/tree"
	"github.com/spf13/cobra"
)

type treeCmdConfig struct {
	dataCmdConfig
	dotOutput   string
	interactive bool
}

func treeCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &treeCmdConfig{dataCmdConfig: dataCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Grow a decision tree and test it",
		Long:  `Grow a decision tree from a set of data, print it and test its accuracy against a test set of data`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			c, err := config.trainingConfig(cmd)
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
			t, err := tree.New(trainingSet)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			config.log.Info().Stringer("policy", ts.Policy).Msg("Growing tree...")
			start := time.Now()
			err = thicket.Train(ctx, t, ts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the tree: %v\n", err)
				os.Exit(4)
			}
			config.log.Info().Int("leaves", t.LeafCount()).Int("depth", t.MaxDepth()).Str("took", humanize.RelTime(start, time.Now(), "", "")).Msg("Done")
			fmt.Print(t)
			if config.dotOutput != "" {
				err = os.WriteFile(config.dotOutput, []byte(tree.RenderDot(t)), 0o644)
				if err != nil {
					fmt.Fprintf(os.Stderr, "writing DOT graph: %v\n", err)
					os.Exit(5)
				}
			}
			testingSet, err := config.testingSet(ctx, trainingSet)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading testing set: %v\n", err)
				os.Exit(6)
			}
			accuracy, err := t.Test(testingSet.Refs())
			if err != nil {
				fmt.Fprintf(os.Stderr, "testing tree: %v\n", err)
				os.Exit(7)
			}
			fmt.Printf("Accuracy: %.2f%% on %s records\n", accuracy*100, humanize.Comma(int64(testingSet.Count())))
			if config.interactive {
				err = classifyInteractively(t, trainingSet)
				if err != nil {
					fmt.Fprintf(os.Stderr, "classifying: %v\n", err)
					os.Exit(8)
				}
			}
		},
	}
	config.addFlags(cmd)
	cmd.Flags().StringVar(&(config.dotOutput), "dot", "", "path to a file to which the grown tree will be written as a Graphviz DOT graph")
	cmd.Flags().BoolVar(&(config.interactive), "interactive", false, "after testing, classify samples whose values are read from STDIN as the tree needs them (requires --input)")
	return cmd
}
