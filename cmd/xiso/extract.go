/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"fmt"

	"github.com/rstms/go-common"
	"github.com/rstms/xiso/image"
	"github.com/rstms/xiso/xdvdfs"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var extractCmd = &cobra.Command{
	Use:     "extract IMAGE_FILE...",
	Aliases: []string{"x"},
	Short:   "extract image files",
	Long: `
Extract each image file into a directory named after it, or into the
directory given with --directory when a single image is passed.
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		directory := viper.GetString("directory")
		if directory != "" && len(args) > 1 {
			return common.Fatalf("--directory is only valid with a single image file")
		}
		dryRun := viper.GetBool("dry-run")
		config := readConfig()
		fsys := afero.NewOsFs()

		var failures int
		for _, filename := range args {
			dirname := directory
			if dirname == "" {
				dirname = image.OutputDir(filename)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "extracting %s to %s\n", filename, dirname)
			result, err := image.ExtractImage(fsys, filename, dirname, config, dryRun)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d directories, %d files, %d bytes\n", result.Directories, result.Files, result.Bytes)
			failures += len(result.Failures)
		}
		if failures > 0 {
			return common.Fatalf("%d entries could not be written", failures)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("directory", "d", "", "extract into directory")
	extractCmd.Flags().BoolP("dry-run", "n", false, "read and validate without writing any files")
	extractCmd.Flags().Int("chunk-size", xdvdfs.DefaultChunkSize, "payload copy buffer size in bytes")
	viper.BindPFlag("directory", extractCmd.Flags().Lookup("directory"))
	viper.BindPFlag("dry-run", extractCmd.Flags().Lookup("dry-run"))
	viper.BindPFlag("chunk-size", extractCmd.Flags().Lookup("chunk-size"))
}
