package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "herald",
		Short: "AI Nexus Herald newsletter pipeline",
	}

	root.AddCommand(serveCMD(), generateCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
