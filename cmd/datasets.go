package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/macrolab/fredmcp/internal/dataset"
)

var datasetsLimit int

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List datasets built under the data directory",
	Long: `List committed datasets, newest first. This reads the same on-disk
layout the fred://datasets/recent MCP resource serves, so it is a quick way
to inspect what a client will see.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		entries, err := deps.Catalog.Recent(datasetsLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Printf("No datasets found under %s\n", deps.Config.DataDir)
			return nil
		}

		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"NAME", "CREATED", "PERIOD", "ROWS", "COLUMNS", "TRANSFORMS"})
		tw.SetBorder(true)
		tw.SetRowLine(false)
		tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		tw.SetAlignment(tablewriter.ALIGN_LEFT)
		tw.SetAutoWrapText(false)

		for _, e := range entries {
			m := e.Meta
			transforms := make([]string, 0, len(m.Transformations))
			for id, tag := range m.Transformations {
				transforms = append(transforms, id+"="+tag)
			}
			sort.Strings(transforms)
			tw.Append([]string{
				m.Name,
				m.CreatedAt.Format("2006-01-02 15:04"),
				m.ObservationStart + " to " + m.ObservationEnd,
				fmt.Sprintf("%d", m.RowCount),
				strings.Join(m.Columns, ", "),
				strings.Join(transforms, ", "),
			})
		}
		tw.Render()
		return nil
	},
}

var datasetsShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show the full metadata of one dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		entries, err := deps.Catalog.Recent(0)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.Meta.Name == args[0] {
				fmt.Print(dataset.RenderText([]dataset.Entry{e}))
				return nil
			}
		}
		return fmt.Errorf("dataset %q not found under %s", args[0], deps.Config.DataDir)
	},
}

func init() {
	datasetsCmd.Flags().IntVar(&datasetsLimit, "limit", dataset.DefaultCatalogLimit,
		"maximum number of datasets to list")
	datasetsCmd.AddCommand(datasetsShowCmd)
	rootCmd.AddCommand(datasetsCmd)
}
