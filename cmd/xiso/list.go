/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"fmt"

	"github.com/rstms/xiso/image"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list IMAGE_FILE...",
	Aliases: []string{"ls"},
	Short:   "list image contents",
	Long: `
List every directory and file in each image with its attributes and size.
File contents are not read.
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := readConfig()
		for _, filename := range args {
			img, err := image.OpenImage(filename, config)
			if err != nil {
				return err
			}
			records, err := img.ScanFiles()
			img.Close()
			if err != nil {
				return err
			}
			if len(args) > 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", filename)
			}
			for _, record := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %12d %s\n", record.Attr, record.Size, record.Name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
