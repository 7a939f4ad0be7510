package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/export"
)

var (
	leadsClients []string
	leadsOutput  string
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List saved lead batches",
	Long:  "Without flags, lists the client references that have saved leads. With --client, exports that client's saved leads.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		if len(leadsClients) == 0 {
			refs, err := st.ClientReferences(ctx)
			if err != nil {
				return err
			}
			for _, ref := range refs {
				cmd.Println(ref)
			}
			return nil
		}

		ds, err := st.ListByClients(ctx, leadsClients)
		if err != nil {
			return err
		}

		if leadsOutput != "" {
			return export.SaveXLSX(leadsOutput, ds, "Leads")
		}

		cmd.Printf("%d leads saved for %v\n", ds.Len(), leadsClients)
		return nil
	},
}

func init() {
	leadsCmd.Flags().StringSliceVar(&leadsClients, "client", nil, "client reference(s) to export")
	leadsCmd.Flags().StringVar(&leadsOutput, "output", "", "write leads to an XLSX file")
	rootCmd.AddCommand(leadsCmd)
}
