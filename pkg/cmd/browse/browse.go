package browse

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mdview/internal/state"
	"github.com/Paintersrp/mdview/internal/tui/browse"
	"github.com/Paintersrp/mdview/pkg/arg"
)

func NewCmdBrowse(newState state.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "browse [query]",
		Aliases: []string{"b"},
		Short:   "Browse the catalog interactively",
		Long: heredoc.Doc(`
			Opens the catalog browser. Search results are listed on the left of
			the address; opening a record shows the catalog's formatter view of it
			and returning restores the search it was opened from.
		`),
		Example: heredoc.Doc(`
			mdview browse
			mdview browse "water quality"
			mdview browse --catalog ocean lakes
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newState(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			return browse.Run(s, arg.HandleQuery(args))
		},
	}

	return cmd
}
