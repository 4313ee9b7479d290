package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "inspect DATA",
		Short: "Print a data document, or the results of a jq query over it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadData(args[0])
			if err != nil {
				return err
			}
			s, err := a.session(data)
			if err != nil {
				return err
			}
			defer s.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			snapshot := s.Store().Snapshot()
			if query == "" {
				return enc.Encode(snapshot)
			}
			results, err := runQuery(cmd.Context(), query, snapshot)
			if err != nil {
				return err
			}
			for _, r := range results {
				if err := enc.Encode(r); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "jq expression evaluated against the data")
	return cmd
}
