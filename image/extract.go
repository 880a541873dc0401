/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package image

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/rstms/xiso"
	"github.com/spf13/afero"
)

// OutputDir is the default extraction directory for an image: its name
// without the extension.
func OutputDir(filename string) string {
	dir := strings.TrimSuffix(filename, filepath.Ext(filename))
	if dir == filename || dir == "" {
		dir = filename + ".d"
	}
	return dir
}

// ExtractImage extracts filename into dirname on fsys. In a dry run nothing
// is created but every entry and payload is still read and validated.
func ExtractImage(fsys afero.Fs, filename, dirname string, config Config, dryRun bool) (*Result, error) {
	img, err := Open(fsys, filename, config)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	if img.Redump() {
		log.Println("Redump-style image detected")
	}

	var sink xiso.Sink
	if dryRun {
		sink = NewDryRunSink()
	} else {
		sink, err = NewHostSink(fsys, dirname)
		if err != nil {
			return nil, Fatal(err)
		}
	}

	result, err := img.Extract(sink)
	if err != nil {
		return result, err
	}
	return result, nil
}
