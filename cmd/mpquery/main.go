package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"

	"github.com/kailas-cloud/mpapi"
	"github.com/kailas-cloud/mpapi/internal/version"
)

func main() {
	// A local .env may carry MP_API_KEY and friends.
	_ = godotenv.Load()

	if err := buildApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "mpquery:", err)
		os.Exit(1)
	}
}

func buildApp() *cli.App {
	app := cli.NewApp()
	app.Name = "mpquery"
	app.Usage = "query the Materials Project API"
	app.Version = version.Short() + " (" + mpapi.UserAgent() + ")"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   apiKeyFlagName,
			Usage:  "API key, overrides MP_API_KEY and the settings file",
			EnvVar: "MP_API_KEY",
		},
		cli.StringFlag{
			Name:  endpointFlagName,
			Usage: "API endpoint, overrides MP_API_ENDPOINT and the settings file",
		},
		cli.StringFlag{
			Name:  logLevelFlagName,
			Usage: "client log level: debug, info, warn or error",
			Value: "warn",
		},
	}

	app.Commands = []cli.Command{
		searchCommand(),
		getCommand(),
		countCommand(),
		fieldsCommand(),
		routesCommand(),
		versionCommand(),
		settingsCommand(),
		chgcarCommand(),
	}
	return app
}
