// internstat - scan text files, intern every token, and report how much
// memory deduplication saves on that corpus.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/tliron/commonlog"

	"github.com/chazu/intern"
	"github.com/chazu/intern/report"
	"github.com/chazu/intern/scan"
	"github.com/chazu/intern/snapshot"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("internstat")

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	profilePath := flag.String("profile", "", "TOML scan profile (delimiters, length bounds, case folding)")
	dbPath := flag.String("db", "", "Record the report in a SQLite database at this path")
	snapOut := flag.String("snapshot", "", "Write the scanned vocabulary as a CBOR snapshot")
	warmPath := flag.String("warm", "", "Pre-load a vocabulary snapshot before scanning")
	cleanup := flag.Bool("cleanup", false, "Sweep stale table slots after scanning and report the count")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: internstat [options] <file>...\n\n")
		fmt.Fprintf(os.Stderr, "Tokenizes the given files, interns every token into one shared table,\n")
		fmt.Fprintf(os.Stderr, "and reports how many token bytes deduplication avoided holding.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  internstat access.log                      # Report dedup savings\n")
		fmt.Fprintf(os.Stderr, "  internstat -profile csv.toml data.csv      # Custom delimiters\n")
		fmt.Fprintf(os.Stderr, "  internstat -db runs.db *.log               # Record reports over time\n")
		fmt.Fprintf(os.Stderr, "  internstat -snapshot vocab.cbor corpus.txt # Save the vocabulary\n")
		fmt.Fprintf(os.Stderr, "  internstat -warm vocab.cbor corpus.txt     # Start from a warm table\n")
	}
	flag.Parse()

	if *verbose {
		commonlog.Configure(1, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Args(), *profilePath, *dbPath, *snapOut, *warmPath, *cleanup); err != nil {
		log.Errorf("%s", err)
		fmt.Fprintf(os.Stderr, "internstat: %v\n", err)
		os.Exit(1)
	}
}

func run(paths []string, profilePath, dbPath, snapOut, warmPath string, cleanup bool) error {
	prof := scan.DefaultProfile()
	if profilePath != "" {
		var err error
		prof, err = scan.LoadProfile(profilePath)
		if err != nil {
			return err
		}
		log.Infof("loaded profile from %s", profilePath)
	}

	tbl := intern.NewTable()

	// Handles from the warm snapshot and from the scans; everything in
	// here stays canonical until we exit.
	var held []intern.Value

	if warmPath != "" {
		f, err := os.Open(warmPath)
		if err != nil {
			return err
		}
		snap, err := snapshot.Read(f)
		f.Close()
		if err != nil {
			return err
		}
		vals, err := snap.Restore(tbl)
		if err != nil {
			return err
		}
		held = append(held, vals...)
		log.Infof("warm start: %d strings from snapshot %s", len(vals), snap.ID)
	}

	var total scan.Report
	for _, path := range paths {
		res, err := scan.File(path, tbl, prof)
		if err != nil {
			return err
		}
		held = append(held, res.Vocabulary...)
		total.Add(res.Report)
		log.Infof("%s: %d tokens, %d distinct", path, res.Report.Tokens, res.Report.Distinct)
	}

	stats := tbl.Stats()
	fmt.Printf("files:          %d\n", len(paths))
	fmt.Printf("tokens:         %d (%d bytes)\n", total.Tokens, total.TokenBytes)
	fmt.Printf("distinct:       %d (%d bytes held)\n", stats.Allocations, total.DistinctBytes)
	fmt.Printf("bytes saved:    %d\n", total.Savings())
	fmt.Printf("table:          %d hits, %d misses, %d slots\n", stats.Hits, stats.Misses, stats.Slots)

	if dbPath != "" {
		store, err := report.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.Save(sourceLabel(paths), total)
		if err != nil {
			return err
		}
		log.Infof("report recorded as row %d in %s", id, dbPath)
	}

	if snapOut != "" {
		snap := snapshot.Capture(tbl)
		f, err := os.Create(snapOut)
		if err != nil {
			return err
		}
		if err := snapshot.Write(f, snap); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Infof("snapshot %s: %d strings -> %s", snap.ID, len(snap.Strings), snapOut)
	}

	if cleanup {
		removed := tbl.Cleanup()
		fmt.Printf("stale slots:    %d removed\n", removed)
	}

	runtime.KeepAlive(held)
	return nil
}

func sourceLabel(paths []string) string {
	if len(paths) == 1 {
		return paths[0]
	}
	return fmt.Sprintf("%s (+%d more)", paths[0], len(paths)-1)
}
