package main

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	// Import all the nodes implemented here.
	_ "github.com/acuvity/sharepoint-flow/api/graph"
	_ "github.com/acuvity/sharepoint-flow/api/sharepoint"
	"github.com/acuvity/sharepoint-flow/cmd/cli"
	"github.com/acuvity/sharepoint-flow/config"
	"github.com/acuvity/sharepoint-flow/logger"
	"github.com/acuvity/sharepoint-flow/mcp"
)

func main() {

	name := "sharepoint-flow"
	description := "SharePoint list nodes over MCP"
	version := "1.0.0"

	// A missing .env is fine.
	_ = godotenv.Load()

	cobra.OnInitialize(func() {
		viper.SetEnvPrefix(name)
		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		logger.Configure(viper.GetString("log-level"), viper.GetString("log-format"))
	})

	var rootCmd = &cobra.Command{
		Use:          name,
		Short:        description,
		SilenceUsage: true,
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Prints the version and exit.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	var cliCommand = &cobra.Command{
		Use:   "cli",
		Short: "Run one node and print the resulting context.",
		RunE:  cli.Run,
	}
	cli.Flags(cliCommand)

	rootCmd.AddCommand(
		versionCmd,
		cliCommand,
	)

	rootCmd.PersistentFlags().String("tenant-id", "", "Microsoft Tenant ID")
	rootCmd.PersistentFlags().String("client-id", "", "Microsoft Client ID")
	rootCmd.PersistentFlags().String("client-secret", "", "Microsoft Client Secret")
	rootCmd.PersistentFlags().String("transport", "sse", "MCP transport type (stdio or sse)")
	rootCmd.PersistentFlags().String("listen", ":8000", "Listen address of the sse transport")
	rootCmd.PersistentFlags().String("base-url", "http://localhost:8000", "Public base URL of the sse transport")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console or json)")
	rootCmd.PersistentFlags().Duration("http-timeout", config.DefaultHTTPTimeout, "Timeout of outbound HTTP requests")
	rootCmd.PersistentFlags().Float64("rate-limit", config.DefaultRateLimit, "SharePoint REST requests per second")
	rootCmd.PersistentFlags().Int("rate-burst", config.DefaultRateBurst, "SharePoint REST request burst")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		log.Fatal().Err(err).Msg("unable to bind flags")
	}

	viper.SetConfigName("config") // name of the file (without extension)
	viper.SetConfigType("yaml")   // or viper.SetConfigType("json") if it's json
	viper.AddConfigPath(".")      // optionally look for config in the working directory

	// Read in the config
	_ = viper.ReadInConfig()

	rootCmd.RunE = mcp.Run
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
