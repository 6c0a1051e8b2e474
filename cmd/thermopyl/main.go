// Command thermopyl compiles a local ThermoML Archive mirror into tabular
// datasets and keeps the mirror up to date.
//
//	thermopyl update [-path DIR]
//	thermopyl build  [-path DIR] [-journalprefix PREFIX] [-normalize-alloys]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/acfdavis/thermopyl/pkg/archive"
	"github.com/acfdavis/thermopyl/pkg/compiler"
	"github.com/acfdavis/thermopyl/pkg/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	zlog, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		return 1
	}
	defer zlog.Sync()
	log := zlog.Sugar()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if len(os.Args) < 2 {
		usage()
		return 2
	}

	switch os.Args[1] {
	case "update":
		return runUpdate(ctx, log, os.Args[2:])
	case "build":
		return runBuild(log, os.Args[2:])
	default:
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: thermopyl <update|build> [flags]")
}

func runUpdate(ctx context.Context, log *zap.SugaredLogger, args []string) int {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	path := fs.String("path", archive.DefaultPath(), "local archive mirror location")
	fs.Parse(args)

	if err := archive.NewUpdater(*path, log).Update(ctx); err != nil {
		log.Errorw("archive update failed", "error", err)
		return 1
	}
	return 0
}

func runBuild(log *zap.SugaredLogger, args []string) int {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	path := fs.String("path", archive.DefaultPath(), "local archive mirror location")
	prefix := fs.String("journalprefix", "", "journal prefix filter for XML file names")
	normalize := fs.Bool("normalize-alloys", false, "add normalized_formula and active_components columns")
	fs.Parse(args)

	files, err := archive.ListXMLFiles(*path, *prefix)
	if err != nil {
		log.Errorw("listing XML files failed", "path", *path, "error", err)
		return 1
	}
	if len(files) == 0 {
		log.Errorw("no XML files found", "path", *path, "journalprefix", *prefix)
		return 1
	}
	log.Infow("compiling archive", "path", *path, "files", len(files))

	ds := compiler.New(log).Build(files, compiler.Options{
		NormalizeAlloys:    *normalize,
		RepositoryMetadata: archive.LoadMetadata(*path, log),
	})

	if err := store.SaveDataset(*path, ds.Data, ds.Compounds, ds.RepositoryMetadata); err != nil {
		log.Errorw("saving dataset failed", "error", err)
		return 1
	}

	fmt.Printf("Wrote %d measurement rows and %d compounds to %s\n", ds.Data.Len(), ds.Compounds.Len(), *path)
	return 0
}
