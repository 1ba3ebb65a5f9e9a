package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mdview/internal/constants"
	"github.com/Paintersrp/mdview/internal/record"
	"github.com/Paintersrp/mdview/internal/state"
	"github.com/Paintersrp/mdview/pkg/arg"
	"github.com/Paintersrp/mdview/pkg/flags"
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0AF"))

func NewCmdView(newState state.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "view <uuid>",
		Aliases: []string{"v"},
		Short:   "Print a record rendered by the catalog formatter",
		Long: heredoc.Doc(`
			Looks up a record by uuid and prints the catalog's formatter view of
			it, followed by its links, downloads and map layers.
		`),
		Example: heredoc.Doc(`
			mdview view 0a1b2c3d-4e5f-6789-abcd-ef0123456789
			mdview view --width 100 abc123 | less -R
			mdview view --outline abc123
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uuid, err := arg.HandleUUID(args)
			if err != nil {
				return err
			}

			s, err := newState(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			outline, err := cmd.Flags().GetBool("outline")
			if err != nil {
				return err
			}

			return Render(cmd.Context(), s, uuid, Options{
				Width:   flags.HandleWidth(cmd),
				Outline: outline,
			}, cmd.OutOrStdout())
		},
	}

	flags.AddWidth(cmd)
	cmd.Flags().Bool("outline", false, "Print the section headings of the formatter view instead of its content")
	return cmd
}

// Options controls how Render prints a record.
type Options struct {
	Width   int
	Outline bool
}

// Render drives the view state to the record view of uuid without a
// terminal UI and writes the result to out.
func Render(ctx context.Context, s *state.State, uuid string, opts Options, out io.Writer) error {
	var errs []error
	s.OnError(func(err error) { errs = append(errs, err) })
	s.Start()

	if err := s.Document.Resize(constants.DetailTarget, opts.Width); err != nil {
		return err
	}
	s.Location.SetUUID(uuid)
	if err := s.Loop.RunUntilIdle(ctx); err != nil {
		return err
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	current := s.Manager.Current()
	if current == nil || current.UUID != uuid {
		return fmt.Errorf("record %s could not be loaded", uuid)
	}

	title := current.UUID
	if md, ok := current.Source.(*record.Metadata); ok {
		title = md.DisplayTitle()
	}
	fmt.Fprintln(out, headingStyle.Render(title))
	fmt.Fprintln(out, s.Location.AbsURL())
	fmt.Fprintln(out)

	if opts.Outline {
		sections, err := s.Renderer.Outline(s.Document, constants.DetailTarget)
		if err != nil {
			return err
		}
		for _, sec := range sections {
			fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", max(sec.Level-1, 0)), sec.Title)
		}
		return nil
	}

	fmt.Fprintln(out, s.Document.Content(constants.DetailTarget))

	writeLinks(out, "Links", current.Links)
	writeLinks(out, "Downloads", current.Downloads)
	writeLinks(out, "Layers", current.Layers)
	if len(current.Contacts) > 0 {
		fmt.Fprintln(out, headingStyle.Render("Contacts"))
		for _, c := range current.Contacts {
			fmt.Fprintf(out, "  %s\n", strings.Join(nonEmpty(c.Role, c.Organisation, c.Email), " · "))
		}
	}
	return nil
}

func writeLinks(out io.Writer, heading string, links []record.Link) {
	if len(links) == 0 {
		return
	}
	fmt.Fprintln(out, headingStyle.Render(heading))
	for _, l := range links {
		name := l.Name
		if name == "" {
			name = l.Description
		}
		fmt.Fprintf(out, "  %s\n", strings.Join(nonEmpty(name, l.URL), "  "))
	}
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
