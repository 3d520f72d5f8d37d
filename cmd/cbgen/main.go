// Command cbgen resolves command-block programs into listings.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/chazu/cbgen/gen"
	"github.com/chazu/cbgen/manifest"
	"github.com/chazu/cbgen/store"

	_ "github.com/tliron/commonlog/simple"
)

type options struct {
	dir       string
	format    string
	out       string
	storePath string
	verbose   int
	logFile   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:           "cbgen",
		Short:         "Generate command-block listings from program files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if opts.logFile != "" {
				path = &opts.logFile
			}
			commonlog.Configure(opts.verbose, path)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.dir, "dir", "C", ".", "Project directory (searched upward for "+manifest.FileName+")")
	rootCmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "", "Output format: text, table or cbor (default from manifest)")
	rootCmd.PersistentFlags().StringVar(&opts.storePath, "store", "", "Artifact database path (default from manifest)")
	rootCmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "Increase log verbosity")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(
		newGenCmd(&opts),
		newLabelCmd(&opts),
		newShowCmd(&opts),
		newListCmd(&opts),
	)
	return rootCmd
}

// loadManifest finds the project manifest, falling back to defaults rooted
// at the given directory.
func loadManifest(dir string) (*manifest.Manifest, error) {
	m, err := manifest.FindAndLoad(dir)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return m, nil
	}
	m = manifest.Default()
	if m.Dir, err = filepath.Abs(dir); err != nil {
		return nil, err
	}
	return m, nil
}

func newGenerator(opts *options) (*gen.Generator, error) {
	m, err := loadManifest(opts.dir)
	if err != nil {
		return nil, err
	}
	if opts.storePath != "" {
		m.Output.Store = opts.storePath
	}
	if opts.format != "" {
		m.Output.Format = opts.format
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}
	return gen.New(m), nil
}

// openStore opens the configured artifact database. It returns nil, nil
// when none is configured and required is false.
func openStore(m *manifest.Manifest, required bool) (*store.Store, error) {
	path := m.StorePath()
	if path == "" {
		if required {
			return nil, fmt.Errorf("no artifact store configured (set [output] store in %s or pass --store)", manifest.FileName)
		}
		return nil, nil
	}
	return store.Open(path)
}
