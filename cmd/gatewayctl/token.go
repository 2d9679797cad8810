package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/gateway-admin/pkg/config"
	"github.com/doodlesbykumbi/gateway-admin/pkg/identity"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/middleware"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token <userId>",
	Short: "Issue a bearer token",
	Long: `Issue a bearer token signed with GATEWAY_JWT_SECRET.

The user id has the form login@gateway. The gateway claim defaults to the
part after the last '@'.

Example:
  export GATEWAY_TOKEN="$(gatewayctl token alice@gw1)"
  gatewayctl token admin@gw1 --ttl 1h`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		gatewayID, _ := cmd.Flags().GetString("gateway")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := issueToken(args[0], gatewayID, ttl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringP("gateway", "g", "", "gateway claim")
	tokenCmd.Flags().Duration("ttl", 8*time.Minute, "token lifetime")
}

func issueToken(userID, gatewayID string, ttl time.Duration) (string, error) {
	if gatewayID == "" {
		_, gatewayID = identity.SplitUserID(userID)
	}
	if gatewayID == "" {
		return "", fmt.Errorf("user id %q has no gateway; pass --gateway", userID)
	}

	cfg := config.Get()
	j, err := middleware.NewJWTAuthenticatorFromEnv(cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		return "", err
	}
	return j.Issue(userID, gatewayID, ttl)
}
