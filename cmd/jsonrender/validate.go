package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate TREE",
		Short: "Check an element tree against the catalog",
		Long:  `Checks every element's type, props, children and actions against the catalog, then the tree's structure: missing root, dangling children, cycles and unreachable elements.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadTree(args[0])
			if err != nil {
				return err
			}
			s, err := a.session(nil)
			if err != nil {
				return err
			}
			defer s.Close()

			result := s.Validate(tree)
			out := cmd.OutOrStdout()
			for _, w := range result.Warnings {
				writeLine(out, "warning %s [%s] %s", w.Path, w.Code, w.Message)
			}
			for _, e := range result.Errors {
				writeLine(out, "error   %s [%s] %s", e.Path, e.Code, e.Message)
			}
			if !result.Success() {
				return fmt.Errorf("tree is invalid: %d error(s)", len(result.Errors))
			}
			writeLine(out, "tree is valid")
			return nil
		},
	}
}
