package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rendis/jsonrender/pkg/schema"
	"github.com/rendis/jsonrender/pkg/session"
)

func newActCmd(a *app) *cobra.Command {
	var (
		dataPath string
		prop     string
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "act TREE ELEMENT",
		Short: "Run the action bound to an element and print the resulting data",
		Long:  `Decodes the action held in ELEMENT's action prop, asks for confirmation when the action carries a prompt, runs it with the builtin handlers and prints the data document afterwards.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadTree(args[0])
			if err != nil {
				return err
			}
			action, err := elementAction(tree, args[1], prop)
			if err != nil {
				return err
			}
			data, err := loadData(dataPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			confirmer := promptConfirmer(cmd.InOrStdin(), out)
			if yes {
				confirmer = func(context.Context, schema.ConfirmSpec) (bool, error) { return true, nil }
			}
			s, err := a.session(data,
				session.WithConfirmer(confirmer),
				session.WithNavigator(session.NavigatorFunc(func(path string) {
					writeLine(out, "navigate %s", path)
				})),
			)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Dispatch(cmd.Context(), action); err != nil {
				if errors.Is(err, session.ErrDeclined) {
					writeLine(out, "declined")
					return nil
				}
				return err
			}

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(s.Store().Snapshot())
		},
	}
	cmd.Flags().StringVar(&dataPath, "data", "", "Data document (JSON or YAML)")
	cmd.Flags().StringVar(&prop, "prop", "action", "Element prop holding the action")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm every prompt")
	return cmd
}

func elementAction(tree *schema.ElementTree, key, prop string) (schema.Action, error) {
	el, ok := tree.Element(key)
	if !ok {
		return schema.Action{}, schema.NewErrorf(schema.ErrCodeNotFound, "element %q not in tree", key)
	}
	raw, ok := el.Props[prop]
	if !ok {
		return schema.Action{}, schema.NewErrorf(schema.ErrCodeNotFound, "element has no %q prop", prop).WithElement(key)
	}
	action, err := schema.DecodeAction(raw)
	if err != nil {
		return schema.Action{}, fmt.Errorf("element %s: %w", key, err)
	}
	return action, nil
}

// promptConfirmer asks on out and reads a y/n answer from in.
func promptConfirmer(in io.Reader, out io.Writer) session.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(_ context.Context, prompt schema.ConfirmSpec) (bool, error) {
		writeLine(out, "%s", prompt.Title)
		if prompt.Message != "" {
			writeLine(out, "%s", prompt.Message)
		}
		_, _ = fmt.Fprint(out, "[y/N] ")
		answer, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}
