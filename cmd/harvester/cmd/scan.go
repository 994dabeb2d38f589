package cmd

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/user/course-harvester/internal/adapter/htmlpage"
	"github.com/user/course-harvester/internal/usecase"
)

var scanBase string

func init() {
	scanCmd.Flags().StringVar(&scanBase, "base", "", "URL the page was saved from, used to resolve relative links")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan <course-page.html>",
	Short: "Prints the links a saved course page would download.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		classes, err := loadIconTable(cfg.IconTable)
		if err != nil {
			return err
		}

		f, err := afero.NewOsFs().Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		doc, err := htmlpage.Parse(f, scanBase)
		if err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		harvester := usecase.NewLinkHarvester(doc, usecase.NewClassifier(classes), usecase.DefaultSelectors(), log)
		links, err := usecase.Collect(harvester.Harvest(cmd.Context()))
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"#", "Link", "Icon"})
		for i, l := range links {
			t.AppendRow(table.Row{strconv.Itoa(i), l.Href, string(l.Icon)})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}
