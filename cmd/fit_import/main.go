package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goncalonina/Road-to-Power/config"
	"github.com/goncalonina/Road-to-Power/exportstore"
	"github.com/goncalonina/Road-to-Power/fitimport"
	"github.com/goncalonina/Road-to-Power/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "Optional YAML config file (environment variables override it)")
		fitDir     = flag.String("dir", "", "Directory of .fit activity files")
		outPath    = flag.String("out", "", "Export CSV path (default: today's export in the export directory)")
		ftp        = flag.Float64("ftp", 0, "FTP override in watts (default ATHLETE_FTP)")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --dir activities/ [--out export.csv] [--ftp 250]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*fitDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fit_import failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "fit_import failed: %v\n", err)
		os.Exit(1)
	}

	opts := fitimport.Options{FTPWatts: *ftp, Logger: logger}
	if opts.FTPWatts <= 0 {
		if v := cfg.FTP(); v != nil {
			opts.FTPWatts = *v
		}
	}

	rows, err := fitimport.DecodeDir(*fitDir, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fit_import failed: %v\n", err)
		os.Exit(1)
	}

	path := *outPath
	if path == "" {
		path = filepath.Join(cfg.Paths.ExportDir, exportstore.FileName(time.Now()))
	}
	if err := exportstore.WriteCSV(path, rows); err != nil {
		fmt.Fprintf(os.Stderr, "fit_import failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("fit_import complete\n")
	fmt.Printf("Activities:  %d\n", len(rows))
	fmt.Printf("Export file: %s\n", path)
}
