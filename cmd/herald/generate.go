package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/aminajavaid30/ai-nexus-herald/config"
	"github.com/aminajavaid30/ai-nexus-herald/internal/agent/core"
)

func generateCMD() *cobra.Command {
	var cfgPath string
	var runs int
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Run the newsletter pipeline and save its artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}

			logger := log.New(log.Writer(), "[HERALD] ", log.LstdFlags)
			pipeline, err := core.NewPipeline(cfg, logger)
			if err != nil {
				return err
			}

			for i := 0; i < runs; i++ {
				state, err := pipeline.Orchestrator.Run(cmd.Context())
				if err != nil {
					return err
				}

				if _, err := pipeline.Store.SaveDataset(state.News); err != nil {
					return err
				}

				fmt.Println("Topics:")
				for _, n := range state.News {
					fmt.Printf("- %s\n", n.Topic)
				}
				fmt.Println("\nNewsletter:")
				fmt.Println(state.Newsletter)
			}
			return nil
		},
	}
	generate.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config.yaml)")
	generate.Flags().IntVarP(&runs, "runs", "n", 1, "number of pipeline runs")

	return generate
}
