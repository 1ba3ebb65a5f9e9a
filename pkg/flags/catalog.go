package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// AddCatalog registers the persistent --catalog flag. Its value, or
// MDVIEW_CATALOG, selects the catalog profile for a single invocation.
func AddCatalog(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringP(
			"catalog",
			"c",
			"",
			"Catalog profile to use for this command (default is the current catalog)",
		)
	viper.BindPFlag("catalog", cmd.PersistentFlags().Lookup("catalog"))
}
