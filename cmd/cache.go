package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "List series metadata accumulated in the local cache",
	Long: `List the series metadata cached in the local database. Entries
accumulate whenever fetch_series_metadata_tool succeeds; there is no TTL and
no eviction. Plot labeling reads titles from this cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		if deps.Meta == nil {
			return fmt.Errorf("metadata cache unavailable at %s", deps.Config.DBPath)
		}
		metas, err := deps.Meta.ListSeriesMeta()
		if err != nil {
			return fmt.Errorf("reading metadata cache: %w", err)
		}
		if len(metas) == 0 {
			fmt.Printf("No cached series metadata in %s\n", deps.Config.DBPath)
			return nil
		}
		sort.Slice(metas, func(i, j int) bool { return metas[i].ID < metas[j].ID })

		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"ID", "TITLE", "FREQ", "UNITS", "FETCHED"})
		tw.SetBorder(true)
		tw.SetRowLine(false)
		tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		tw.SetAlignment(tablewriter.ALIGN_LEFT)
		tw.SetAutoWrapText(false)

		for _, m := range metas {
			title := m.Title
			if len(title) > 48 {
				title = title[:45] + "..."
			}
			units := m.UnitsShort
			if units == "" {
				units = m.Units
			}
			fetched := ""
			if !m.FetchedAt.IsZero() {
				fetched = m.FetchedAt.Format("2006-01-02 15:04")
			}
			tw.Append([]string{m.ID, title, m.FrequencyShort, units, fetched})
		}
		tw.Render()
		fmt.Printf("%d series cached in %s\n", len(metas), deps.Config.DBPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}
