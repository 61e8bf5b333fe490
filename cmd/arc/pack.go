package main

import (
	"github.com/spf13/cobra"

	"github.com/meigma/arc"
)

func newPackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pack <file>... <archive>",
		Short: "Pack files into a new archive",
		Long: `Pack writes the given files, in order, into a new archive. Each file is
recorded under the path given on the command line; absolute paths and paths
outside the working directory are recorded under their base name. Names
must not contain whitespace. The archive must not exist yet.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			inputs, archive := args[:len(args)-1], args[len(args)-1]
			if err := arc.ValidatePack(inputs, archive); err != nil {
				return err
			}
			res, err := arc.Pack(archive, inputs,
				arc.PackWithChunkSize(a.cfg.ChunkSize),
				arc.PackWithMemoryMap(a.cfg.MemoryMap),
				arc.PackWithShortWritePolicy(a.shortWritePolicy()),
				arc.PackWithLogger(a.log),
			)
			if err != nil {
				return err
			}
			if res.ShortWrites > 0 {
				a.log.Warn("archive is incomplete", "archive", archive, "short_writes", res.ShortWrites)
			}
			return nil
		},
	}
}
