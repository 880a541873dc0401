/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rstms/xiso/image"
	"github.com/rstms/xiso/xdvdfs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const Version = "0.1.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:     "xiso",
	Version: Version,
	Short:   "Xbox DVD filesystem image extractor",
	Long: `
Extract the files and directories stored in Xbox DVD filesystem (xdvdfs)
image files without mounting them. Redump-style dumps, which carry extra
sectors in front of the game partition, are detected automatically.
`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.xiso.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "be verbose")
	rootCmd.PersistentFlags().Bool("legacy-padding", false, "correct stale right offsets written by early authoring tools")
	rootCmd.PersistentFlags().Int("max-depth", image.DefaultMaxDepth, "maximum directory tree recursion")
	rootCmd.PersistentFlags().Int64("alternate-offset", xdvdfs.RedumpSectorOffset, "sector offset retried when no volume is found (0 disables)")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("legacy-padding", rootCmd.PersistentFlags().Lookup("legacy-padding"))
	viper.BindPFlag("max-depth", rootCmd.PersistentFlags().Lookup("max-depth"))
	viper.BindPFlag("alternate-offset", rootCmd.PersistentFlags().Lookup("alternate-offset"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".xiso")
	}
	viper.SetEnvPrefix("xiso")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// readConfig builds the traversal config from flags, environment and
// config file.
func readConfig() image.Config {
	config := image.DefaultConfig()
	config.Verbose = viper.GetBool("verbose")
	config.LegacyPadding = viper.GetBool("legacy-padding")
	config.MaxDepth = viper.GetInt("max-depth")
	config.AlternateOffset = viper.GetInt64("alternate-offset")
	if size := viper.GetInt("chunk-size"); size > 0 {
		config.ChunkSize = size
	}
	return config
}
