package flags

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func AddPick(cmd *cobra.Command) {
	cmd.Flags().BoolP("pick", "p", false, "Fuzzy pick a result and display it")
}

func HandlePick(cmd *cobra.Command) bool {
	pick, err := cmd.Flags().GetBool("pick")
	if err != nil {
		fmt.Printf("error retrieving pick flag: %s\n", err)
		os.Exit(1)
	}
	return pick
}
