package arg

import (
	"fmt"
	"strings"
)

func HandleUUID(args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf(
			"error: No record uuid given. Try again",
		)
	}
	return strings.TrimSpace(args[0]), nil
}

// HandleQuery joins the arguments into one free text query.
func HandleQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
