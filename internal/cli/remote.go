package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/wordparty/internal/api/response"
	"github.com/mcoot/wordparty/internal/model"
)

func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Inspect parties through the server API",
	}

	cmd.AddCommand(newHealthCmd())
	cmd.AddCommand(newRemotePartyCmd())
	cmd.AddCommand(newRemoteWordCmd())
	cmd.AddCommand(newEventsCmd())

	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult

			if err := client.Get(cmd.Context(), "/api/v1/health", &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}

func newRemotePartyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "party <code>",
		Short: "Show a party as the server sees it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := model.NormalizeCode(args[0])
			if err != nil {
				return err
			}

			var result response.Party

			if err := client.Get(cmd.Context(), fmt.Sprintf("/api/v1/parties/%s", code), &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}

func newRemoteWordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "word <word>",
		Short: "Look a word up in the server's word list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Word

			if err := client.Get(cmd.Context(), "/api/v1/words/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}
