package flags

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const fallbackWidth = 80

func AddWidth(cmd *cobra.Command) {
	cmd.Flags().
		IntP(
			"width",
			"w",
			0,
			"Render width in columns (default is the terminal width)",
		)
}

// HandleWidth returns the --width value, else the width of the terminal on
// stdout, else 80 columns.
func HandleWidth(cmd *cobra.Command) int {
	width, err := cmd.Flags().GetInt("width")
	if err != nil {
		fmt.Printf("error retrieving width flag: %s\n", err)
		os.Exit(1)
	}
	if width > 0 {
		return width
	}

	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	return fallbackWidth
}
