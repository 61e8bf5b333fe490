package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meigma/arc"
)

func newListCmd(a *app) *cobra.Command {
	var digests bool
	cmd := &cobra.Command{
		Use:   "list <archive>",
		Short: "List the entries of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			archive := args[0]
			if err := arc.ValidateUnpack(archive); err != nil {
				return err
			}
			inv, err := arc.Inspect(archive,
				arc.InspectWithDigests(digests),
				arc.InspectWithChunkSize(a.cfg.ChunkSize),
				arc.InspectWithLogger(a.log),
			)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			if digests {
				_, _ = fmt.Fprintln(tw, "NAME\tSIZE\tOFFSET\tDIGEST")
			} else {
				_, _ = fmt.Fprintln(tw, "NAME\tSIZE\tOFFSET")
			}
			for i, e := range inv.Header.Entries {
				if digests {
					_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", e.Name, e.Size, e.Offset, inv.Digests[i])
				} else {
					_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\n", e.Name, e.Size, e.Offset)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&digests, "digests", false, "print the sha256 digest of every entry")
	return cmd
}
