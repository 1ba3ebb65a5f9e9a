package search

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mdview/internal/catalog"
	"github.com/Paintersrp/mdview/internal/record"
	"github.com/Paintersrp/mdview/internal/state"
	"github.com/Paintersrp/mdview/pkg/arg"
	"github.com/Paintersrp/mdview/pkg/cmd/view"
	"github.com/Paintersrp/mdview/pkg/flags"
)

const titleWidth = 60

// finder picks one of the results; it returns -1 with fuzzyfinder.ErrAbort
// when the user cancels.
type finder func(records []*record.Metadata, query string) (int, error)

func NewCmdSearch(newState state.Factory) *cobra.Command {
	return newCmdSearch(newState, fuzzyPick)
}

func newCmdSearch(newState state.Factory, pick finder) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "search <terms>",
		Aliases: []string{"s"},
		Short:   "Search the catalog",
		Long: heredoc.Doc(`
			Runs a free text search against the catalog and prints one line per
			record: its uuid, change date and title. With --pick the results are
			offered in a fuzzy finder and the chosen record is displayed.
		`),
		Example: heredoc.Doc(`
			mdview search water quality
			mdview search --pick lakes
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := arg.HandleQuery(args)

			s, err := newState(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			resp, err := s.Client.Search(cmd.Context(), catalog.Query{
				Any:  query,
				From: 1,
				To:   s.Catalog.PageSize,
			})
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			out := cmd.OutOrStdout()
			if !flags.HandlePick(cmd) {
				writeResults(out, resp)
				return nil
			}

			if len(resp.Metadata) == 0 {
				fmt.Fprintln(out, "No records found")
				return nil
			}
			idx, err := pick(resp.Metadata, query)
			if errors.Is(err, fuzzyfinder.ErrAbort) {
				return nil
			}
			if err != nil {
				return err
			}

			return view.Render(cmd.Context(), s, resp.Metadata[idx].UUID(), view.Options{
				Width: flags.HandleWidth(cmd),
			}, out)
		},
	}

	flags.AddPick(cmd)
	flags.AddWidth(cmd)
	return cmd
}

func writeResults(out io.Writer, resp *catalog.SearchResponse) {
	for _, md := range resp.Metadata {
		changed := "----------"
		if t, ok := md.Changed(); ok {
			changed = t.Format("2006-01-02")
		}
		fmt.Fprintf(out, "%s  %s  %s\n", md.UUID(), changed, truncate.StringWithTail(md.DisplayTitle(), titleWidth, "…"))
	}
	fmt.Fprintf(out, "%d of %d records\n", len(resp.Metadata), resp.Summary.Count)
}

func fuzzyPick(records []*record.Metadata, query string) (int, error) {
	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return preview(records[i], w/2-4)
		}),
		fuzzyfinder.WithHeader("Pick a record to display"),
	}
	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}

	return fuzzyfinder.Find(records, func(i int) string {
		return records[i].DisplayTitle()
	}, options...)
}

func preview(md *record.Metadata, width int) string {
	var b strings.Builder
	b.WriteString(md.DisplayTitle())
	b.WriteString("\n")
	b.WriteString(md.UUID())
	b.WriteString("\n")
	if t, ok := md.Changed(); ok {
		b.WriteString("Changed " + t.Format("2006-01-02") + "\n")
	}
	if md.Abstract != "" {
		b.WriteString("\n")
		if width > 0 {
			b.WriteString(wordwrap.String(md.Abstract, width))
		} else {
			b.WriteString(md.Abstract)
		}
	}
	return b.String()
}
