package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mdview/internal/constants"
	"github.com/Paintersrp/mdview/internal/state"
	"github.com/Paintersrp/mdview/pkg/cmd/browse"
	"github.com/Paintersrp/mdview/pkg/cmd/catalog"
	"github.com/Paintersrp/mdview/pkg/cmd/search"
	"github.com/Paintersrp/mdview/pkg/cmd/view"
	"github.com/Paintersrp/mdview/pkg/flags"
)

func NewCmdRoot(newState state.Factory, load catalog.ConfigLoader) *cobra.Command {
	browseCmd := browse.NewCmdBrowse(newState)

	cmd := &cobra.Command{
		Use:     "mdview",
		Short:   "Browse a metadata catalog from the terminal.",
		Version: constants.Version,
		Long: heredoc.Doc(`
			mdview searches a metadata catalog and displays its records through
			the catalog's own formatter. Every screen has an address: a search
			with its parameters, or the record view of one uuid. Leaving a record
			returns to the search it was opened from.
		`),
		Example: heredoc.Doc(`
			mdview catalog add --name geo --url https://catalog.example.org/geonetwork/srv/eng
			mdview
			mdview search --pick lakes
			mdview view 0a1b2c3d-4e5f-6789-abcd-ef0123456789
		`),
		SilenceUsage: true,
		// Run the browser by default.
		RunE: browseCmd.RunE,
	}

	flags.AddCatalog(cmd)

	cmd.AddCommand(
		browseCmd,
		view.NewCmdView(newState),
		search.NewCmdSearch(newState),
		catalog.NewCmdCatalog(load),
	)

	return cmd
}
