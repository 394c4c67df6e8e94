package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/KuratZero/c-png-to-pnm/src/cli"
	"github.com/KuratZero/c-png-to-pnm/src/inspect"
	"github.com/KuratZero/c-png-to-pnm/src/oops"
	"github.com/KuratZero/c-png-to-pnm/src/pngerr"
	"github.com/spf13/cobra"
)

func init() {
	chunksCommand := &cobra.Command{
		Use:   "chunks <input.png>",
		Short: "List the chunks of a PNG file",
		Args:  cli.ArgCounts(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			maxMemory, err := cmd.Flags().GetUint64("max-memory")
			if err != nil {
				return oops.New(pngerr.ErrInvalidArgument, "%v", err)
			}

			in, err := os.Open(args[0])
			if err != nil {
				return oops.New(pngerr.ErrCannotOpen, "opening input: %v", err)
			}
			defer in.Close()

			entries, err := inspect.Chunks(in, inspect.Options{MaxAllocBytes: maxMemory})

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "OFFSET\tTYPE\tKIND\tLENGTH\tCRC\t")
			for _, e := range entries {
				status := "ok"
				if !e.CRCValid {
					status = "BAD"
				}
				fmt.Fprintf(w, "%d\t%q\t%s\t%d\t%08x %s\t\n", e.Offset, e.Tag, e.Kind, e.Length, e.CRC, status)
			}
			w.Flush()
			return err
		},
	}
	cli.RootCommand.AddCommand(chunksCommand)
}
