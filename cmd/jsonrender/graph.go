package main

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/rendis/jsonrender/internal/diagram"
)

func newGraphCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "graph TREE",
		Short: "Export the element tree as a Mermaid diagram",
		Long:  `Outputs a Mermaid flowchart (graph TD) of the tree: elements, their children, the actions they trigger and each action's continuations. Elements that fail catalog validation are highlighted.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadTree(args[0])
			if err != nil {
				return err
			}
			cat, err := a.catalog()
			if err != nil {
				return err
			}

			invalid := make(map[string]bool)
			var actionProps []string
			seen := make(map[string]bool)
			for key, el := range tree.Elements {
				if el == nil {
					continue
				}
				if !cat.ValidateElement(el).Success() {
					invalid[key] = true
				}
				comp, ok := cat.Component(el.Type)
				if !ok {
					continue
				}
				for _, p := range comp.ActionProps {
					if !seen[p] {
						seen[p] = true
						actionProps = append(actionProps, p)
					}
				}
			}

			slices.Sort(actionProps)
			model, err := diagram.Build(tree, actionProps, &diagram.Overlay{Invalid: invalid})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write([]byte(diagram.RenderMermaid(model)))
			return err
		},
	}
}
