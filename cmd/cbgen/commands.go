package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chazu/cbgen/manifest"
	"github.com/chazu/cbgen/render"
)

func newGenCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen [program.toml...]",
		Short: "Resolve programs (default: every program in the source dirs)",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			g, err := newGenerator(opts)
			if err != nil {
				return err
			}
			files := args
			if len(files) == 0 {
				if files, err = g.Sources(); err != nil {
					return err
				}
			}
			bundles, err := g.BuildAll(cmd.Context(), files)
			if err != nil {
				return err
			}

			st, err := openStore(g.Manifest(), false)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
				for _, b := range bundles {
					id, fresh, err := g.Persist(st, b)
					if err != nil {
						return err
					}
					status := "unchanged"
					if fresh {
						status = "stored"
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s %s\n", b.Program, status, id)
				}
			}

			w, closeOut, err := output(cmd, opts.out)
			if err != nil {
				return err
			}
			defer closeInto(&err, closeOut, opts.out)
			for i, b := range bundles {
				if i > 0 && g.Manifest().Output.Format != manifest.FormatCBOR {
					if _, err := io.WriteString(w, "\n"); err != nil {
						return err
					}
				}
				if err := g.Emit(w, b, ""); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "-", "Output file, - for stdout")
	return cmd
}

func newLabelCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "label <n>",
		Short: "Print the guard block that starts a labelled sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid label %q: %w", args[0], err)
			}
			g, err := newGenerator(opts)
			if err != nil {
				return err
			}
			b, err := g.Label(n)
			if err != nil {
				return err
			}
			return g.Emit(cmd.OutOrStdout(), b, "")
		},
	}
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newGenerator(opts)
			if err != nil {
				return err
			}
			st, err := openStore(g.Manifest(), true)
			if err != nil {
				return err
			}
			defer st.Close()
			b, err := st.Load(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return g.Emit(cmd.OutOrStdout(), b, "")
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newGenerator(opts)
			if err != nil {
				return err
			}
			st, err := openStore(g.Manifest(), true)
			if err != nil {
				return err
			}
			defer st.Close()
			arts, err := st.List()
			if err != nil {
				return err
			}
			return render.Artifacts(cmd.OutOrStdout(), arts)
		},
	}
}

// closeInto runs closeFn and reports its error through errp unless an
// earlier error is already set.
func closeInto(errp *error, closeFn func() error, path string) {
	if cerr := closeFn(); cerr != nil && *errp == nil {
		*errp = fmt.Errorf("closing %s: %w", path, cerr)
	}
}

// output returns the writer for --out and a func closing it.
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening file %s: %w", path, err)
	}
	return f, f.Close, nil
}
