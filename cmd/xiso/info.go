/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"fmt"

	"github.com/rstms/go-common"
	"github.com/rstms/xiso/image"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var infoCmd = &cobra.Command{
	Use:   "info IMAGE_FILE...",
	Short: "show volume descriptor details",
	Long: `
Show the volume descriptor of each image as YAML: root table location and
size, the sector offset the volume was found at, and its creation time.
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := readConfig()
		for _, filename := range args {
			img, err := image.OpenImage(filename, config)
			if err != nil {
				return err
			}
			info, err := img.Info()
			img.Close()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(info)
			if err != nil {
				return common.Fatal(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "---\n%s", string(data))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
