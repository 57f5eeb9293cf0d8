// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/psgcapi/psgc/psgc"
	"github.com/spf13/cobra"
)

var searchLevel string

var pathCmd = &cobra.Command{
	Use:   "path <code>",
	Short: "Prints the chain of units from the region down to code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		idx, err := loadIndex(cfg)
		if err != nil {
			return err
		}

		path, err := idx.GetPath(args[0])
		if err != nil {
			return err
		}

		printUnits(os.Stdout, path)

		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Prints the units whose name contains query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := psgc.ParseLevel(searchLevel)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		idx, err := loadIndex(cfg)
		if err != nil {
			return err
		}

		units, err := idx.Search(args[0], level)
		if err != nil {
			return err
		}

		printUnits(os.Stdout, units)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchLevel, "level", "", "Restrict results to a level (region, province, municipality, barangay)")
}

// printUnits renders units as a box table.
func printUnits(w io.Writer, units []psgc.GeoUnit) {
	width := len("Name")
	for _, u := range units {
		width = max(width, len([]rune(u.Name)))
	}

	pad := func(s string, n int) string {
		return s + strings.Repeat(" ", max(0, n-len([]rune(s))))
	}

	a, b, c := strings.Repeat("─", 10), strings.Repeat("─", 12), strings.Repeat("─", width)
	fmt.Fprintf(w, "╭─%s─┬─%s─┬─%s─╮\n", a, b, c)
	fmt.Fprintf(w, "│ %-10s │ %-12s │ %s │\n", "Code", "Level", pad("Name", width))
	fmt.Fprintf(w, "├─%s─┼─%s─┼─%s─┤\n", a, b, c)

	for _, u := range units {
		fmt.Fprintf(w, "│ %-10s │ %-12s │ %s │\n", u.Code, u.Level, pad(u.Name, width))
	}

	fmt.Fprintf(w, "╰─%s─┴─%s─┴─%s─╯\n", a, b, c)
}
