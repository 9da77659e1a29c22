package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// VersionMajor is the major number in thicket's version
	VersionMajor = 0
	// VersionMinor is the minor number in thicket's version
	VersionMinor = 1
	// VersionPatch is the patch number in thicket's version
	VersionPatch = 0
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of thicket",
		Long:  `Print the semantic version of this thicket build and exit`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("thicket v%d.%d.%d\n", VersionMajor, VersionMinor, VersionPatch)
		},
	}
}
