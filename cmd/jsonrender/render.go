package main

import (
	"github.com/spf13/cobra"
)

func newRenderCmd(a *app) *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "render TREE",
		Short: "Render an element tree as plain text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadTree(args[0])
			if err != nil {
				return err
			}
			data, err := loadData(dataPath)
			if err != nil {
				return err
			}
			s, err := a.session(data)
			if err != nil {
				return err
			}
			defer s.Close()

			writeLine(cmd.OutOrStdout(), "%s", s.RenderText(cmd.Context(), tree))
			return nil
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "", "Data document (JSON or YAML)")
	return cmd
}
