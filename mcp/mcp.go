package mcp

import (
	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/acuvity/sharepoint-flow/baggage"
	"github.com/acuvity/sharepoint-flow/collection"
	"github.com/acuvity/sharepoint-flow/config"
)

// ServerName and ServerVersion are announced to MCP clients.
const (
	ServerName    = "SharePoint Flow MCP Server"
	ServerVersion = "1.0.0"
)

// NewServer exposes every registered node as an MCP tool.
func NewServer() *server.MCPServer {

	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
	)

	for _, name := range collection.Names() {
		node := collection.Nodes[name]
		s.AddTool(node.Tool, node.Processor)
	}
	return s
}

func Run(cmd *cobra.Command, args []string) error {

	cfg := config.FromViper()
	s := NewServer()

	// Start the server
	switch transport := viper.GetString("transport"); transport {
	case "stdio":
		log.Info().Str("transport", transport).Int("tools", len(collection.Nodes)).Msg("serving")
		if err := server.ServeStdio(s, server.WithStdioContextFunc(baggage.WithConfigFunc(cfg))); err != nil {
			return errors.Wrap(err, "server error")
		}
	case "sse":
		listen := viper.GetString("listen")
		sse := server.NewSSEServer(s,
			server.WithBaseURL(viper.GetString("base-url")),
			server.WithSSEContextFunc(baggage.WithConfigFromRequest(cfg)),
		)
		log.Info().Str("transport", transport).Str("listen", listen).Int("tools", len(collection.Nodes)).Msg("serving")
		if err := sse.Start(listen); err != nil {
			return errors.Wrap(err, "server error")
		}
	default:
		return errors.Newf("invalid transport type: '%s'. Must be 'stdio' or 'sse'", transport)
	}
	return nil
}
