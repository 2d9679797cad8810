package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/gateway-admin/pkg/client"
	"github.com/doodlesbykumbi/gateway-admin/pkg/config"
)

func defaultServerURL() string {
	if u := os.Getenv("GATEWAY_URL"); u != "" {
		return u
	}
	return fmt.Sprintf("http://localhost:%d", defaultPortInt())
}

// addRemoteFlags registers the flags of commands that talk to a running
// server.
func addRemoteFlags(cmd *cobra.Command) {
	cmd.Flags().String("url", defaultServerURL(), "server URL (GATEWAY_URL)")
	cmd.Flags().String("token", os.Getenv("GATEWAY_TOKEN"), "bearer token (GATEWAY_TOKEN)")
}

func remoteClient(cmd *cobra.Command) (*client.Client, error) {
	serverURL, _ := cmd.Flags().GetString("url")
	token, _ := cmd.Flags().GetString("token")
	return client.NewFromConfig(serverURL, token, config.Get())
}

func printJSON(v interface{}) {
	output, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(output))
}
