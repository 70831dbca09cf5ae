package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/relief-geocoder-service/internal/domain"
)

func newRewriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rewrite <address>",
		Short: "print the query each fallback strategy would send",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address := strings.TrimSpace(strings.Join(args, " "))
			if domain.NormalizeAddress(address) == "" {
				return domain.ErrInvalidInput
			}

			out := cmd.OutOrStdout()
			seen := map[string]bool{}
			for i, s := range domain.DefaultStrategies() {
				query, ok := s.Rewrite(address)
				switch {
				case !ok || query == "":
					writeLine(out, fmt.Sprintf("%d %-18s (skipped)", i+1, s.Name))
				case seen[query]:
					writeLine(out, fmt.Sprintf("%d %-18s (duplicate) %s", i+1, s.Name, query))
				default:
					seen[query] = true
					writeLine(out, fmt.Sprintf("%d %-18s %s", i+1, s.Name, query))
				}
			}
			return nil
		},
	}
}
