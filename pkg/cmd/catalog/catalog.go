package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/erikgeiser/promptkit/selection"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mdview/internal/config"
)

// ConfigLoader returns the parsed config file.
type ConfigLoader func() (*config.Config, error)

// chooser asks the user to pick one of names.
type chooser func(names []string, current string) (string, error)

func NewCmdCatalog(load ConfigLoader) *cobra.Command {
	return newCmdCatalog(load, promptCatalog)
}

func newCmdCatalog(load ConfigLoader, choose chooser) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage catalog profiles",
		Long: heredoc.Doc(`
			A catalog profile names a catalog endpoint together with its
			formatter address, render style and logging settings. The current
			profile is used unless --catalog selects another one.
		`),
	}

	cmd.AddCommand(
		newCmdCatalogList(load),
		newCmdCatalogUse(load, choose),
		newCmdCatalogAdd(load),
		newCmdCatalogRemove(load),
	)

	return cmd
}

func newCmdCatalogList(load ConfigLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured catalogs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			names := cfg.CatalogNames()
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No catalogs configured")
				return nil
			}

			for _, name := range names {
				marker := " "
				if name == cfg.CurrentCatalog {
					marker = "*"
				}
				base := cfg.Catalogs[name].BaseURL
				if base == "" {
					base = "(not configured)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\n", marker, name, base)
			}

			return nil
		},
	}
}

func newCmdCatalogUse(load ConfigLoader, choose chooser) *cobra.Command {
	return &cobra.Command{
		Use:   "use [name]",
		Short: "Switch the current catalog",
		Long: heredoc.Doc(`
			Makes a catalog the current one. Without a name the configured
			catalogs are offered in a selection prompt.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			var target string
			if len(args) == 1 {
				target = strings.TrimSpace(args[0])
			} else {
				target, err = choose(cfg.CatalogNames(), cfg.CurrentCatalog)
				if err != nil {
					return err
				}
			}
			if target == "" {
				return fmt.Errorf("catalog name cannot be empty")
			}

			if err := cfg.SwitchCatalog(target); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Switched to catalog %q\n", target)
			return nil
		},
	}
}

func newCmdCatalogAdd(load ConfigLoader) *cobra.Command {
	var (
		name        string
		c           config.Catalog
		makeCurrent bool
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a catalog profile",
		Example: heredoc.Doc(`
			mdview catalog add --name geo --url https://catalog.example.org/geonetwork/srv/eng
			mdview catalog add --name ocean --url https://ocean.example.org/srv/eng \
			  --formatter-url "https://ocean.example.org/srv/eng/md.format.xml?xsl=full_view&uuid=" --current
		`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return fmt.Errorf("catalog name is required")
			}
			if strings.TrimSpace(c.BaseURL) == "" {
				return fmt.Errorf("catalog url is required")
			}

			cfg, err := load()
			if err != nil {
				return err
			}

			entry := c
			entry.HTTP.Timeout = timeout
			if err := cfg.AddCatalog(name, &entry, makeCurrent); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added catalog %q\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name of the new catalog")
	cmd.Flags().StringVar(&c.BaseURL, "url", "", "Base url of the catalog service, e.g. https://host/geonetwork/srv/eng")
	cmd.Flags().StringVar(&c.SearchPath, "search-path", "", "Search service path relative to the url (default \"q\")")
	cmd.Flags().StringVar(&c.Formatter.URL, "formatter-url", "", "Formatter address the record uuid is appended to")
	cmd.Flags().StringVar(&c.Formatter.Style, "style", "", "Render style: dark, light, notty, dracula (default detects the terminal)")
	cmd.Flags().StringVar(&c.AddressBase, "address-base", "", "Address the record paths are appended to when copying links")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "HTTP request timeout (default none)")
	cmd.Flags().BoolVar(&makeCurrent, "current", false, "Switch to the new catalog after creation")

	return cmd
}

func newCmdCatalogRemove(load ConfigLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [name]",
		Short: "Remove a catalog profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("catalog name cannot be empty")
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			if err := cfg.RemoveCatalog(name); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed catalog %q\n", name)
			return nil
		},
	}
}

func promptCatalog(names []string, current string) (string, error) {
	if len(names) == 0 {
		return "", fmt.Errorf("no catalogs configured")
	}

	sel := selection.New(fmt.Sprintf("Select the catalog to use (current: %s).", current), names)
	sel.Filter = nil

	return sel.RunPrompt()
}
