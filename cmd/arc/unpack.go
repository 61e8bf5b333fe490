package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meigma/arc"
)

func newUnpackCmd(a *app) *cobra.Command {
	var (
		dir     string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "unpack <archive>",
		Short: "Extract every file of an archive",
		Long: `Unpack reads the archive header, checks it against the archive size, and
then writes every entry below the destination directory. Existing files
are overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			archive := args[0]
			if err := arc.ValidateUnpack(archive); err != nil {
				return err
			}
			opts := []arc.UnpackOption{
				arc.UnpackWithDir(dir),
				arc.UnpackWithChunkSize(a.cfg.ChunkSize),
				arc.UnpackWithLogger(a.log),
			}
			if verbose {
				opts = append(opts, arc.UnpackWithNameFunc(func(name string) {
					_, _ = fmt.Fprintln(a.stdout, name)
				}))
			}
			_, err := arc.Unpack(archive, opts...)
			return err
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "C", ".", "destination directory")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print entry names while reading the header")
	return cmd
}
