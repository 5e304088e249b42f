// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/livekit-token-server/pkg/config"
	"github.com/livekit/livekit-token-server/pkg/service"
	"github.com/livekit/livekit-token-server/version"
)

var baseFlags = []cli.Flag{
	&cli.StringSliceFlag{
		Name:  "bind",
		Usage: "IP address to listen on, use flag multiple times to specify multiple addresses",
	},
	&cli.UintFlag{
		Name:    "port",
		Usage:   "port to serve the token API on",
		EnvVars: []string{"PORT"},
	},
	&cli.StringFlag{
		Name:  "config",
		Usage: "path to token server config file",
	},
	&cli.StringFlag{
		Name:    "config-body",
		Usage:   "token server config in YAML, typically passed in as an environment var in a container",
		EnvVars: []string{"LIVEKIT_TOKEN_CONFIG"},
	},
	&cli.StringFlag{
		Name:  "key-file",
		Usage: "path to file that contains API keys/secrets",
	},
	&cli.StringFlag{
		Name:    "keys",
		Usage:   "api keys (key: secret\\n)",
		EnvVars: []string{"LIVEKIT_KEYS"},
	},
	&cli.StringFlag{
		Name:    "signing-key",
		Usage:   "API key to sign tokens with, required when more than one key is configured",
		EnvVars: []string{"LIVEKIT_SIGNING_KEY"},
	},
	&cli.StringFlag{
		Name:    "livekit-url",
		Usage:   "URL of the LiveKit server that clients connect to",
		EnvVars: []string{"LIVEKIT_URL"},
	},
	&cli.StringSliceFlag{
		Name:    "allowed-origin",
		Usage:   "origin allowed to call the API from a browser, use flag multiple times to allow several",
		EnvVars: []string{"LIVEKIT_ALLOWED_ORIGINS"},
	},
	&cli.BoolFlag{
		Name:  "dev",
		Usage: "sets log-level to debug and falls back to development keys. insecure for production",
	},
	&cli.BoolFlag{
		Name:   "disable-strict-config",
		Usage:  "disables strict config parsing",
		Hidden: true,
	},
}

func main() {
	generatedFlags, err := config.GenerateCLIFlags(baseFlags, true)
	if err != nil {
		fmt.Println(err)
	}

	app := &cli.App{
		Name:        "livekit-token-server",
		Usage:       "Issues LiveKit room join tokens",
		Description: "run without subcommands to start the server",
		Flags:       append(baseFlags, generatedFlags...),
		Action:      startServer,
		Commands: []*cli.Command{
			{
				Name:   "generate-keys",
				Usage:  "generates an API key and secret pair",
				Action: generateKeys,
			},
			{
				Name:   "create-join-token",
				Usage:  "create a room join token with the same rules as the API",
				Action: createToken,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "room",
						Usage:    "name of room to join",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "identity",
						Usage:    "identity of participant that holds the token",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "publish",
						Usage: "allow publishing tracks, default true",
					},
					&cli.BoolFlag{
						Name:  "subscribe",
						Usage: "allow subscribing to tracks, default true",
					},
					&cli.BoolFlag{
						Name:  "publish-data",
						Usage: "allow sending data messages, default true",
					},
					&cli.BoolFlag{
						Name:  "update-metadata",
						Usage: "allow updating own metadata, default false",
					},
				},
			},
			{
				Name:   "verify-token",
				Usage:  "verifies a token against the configured keys and prints its grant",
				Action: verifyToken,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Usage:    "token to verify",
						Required: true,
					},
				},
			},
			{
				Name:   "help-verbose",
				Usage:  "prints app help, including all generated configuration flags",
				Action: helpVerbose,
			},
		},
		Version: version.Version,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func getConfig(c *cli.Context) (*config.Config, error) {
	confString, err := getConfigString(c.String("config"), c.String("config-body"))
	if err != nil {
		return nil, err
	}

	strictMode := true
	if c.Bool("disable-strict-config") {
		strictMode = false
	}

	conf, err := config.NewConfig(confString, strictMode, c, baseFlags)
	if err != nil {
		return nil, err
	}
	config.InitLoggerFromConfig(&conf.Logging)

	if conf.Development {
		logger.Infow("starting in development mode")
	}

	if err := conf.ValidateKeys(); err != nil {
		return nil, err
	}
	return conf, nil
}

func startServer(c *cli.Context) error {
	conf, err := getConfig(c)
	if err != nil {
		return err
	}

	identity, err := conf.SigningIdentity()
	if err != nil {
		return err
	}

	server, err := service.InitializeServer(conf)
	if err != nil {
		return errors.Wrap(err, "could not create server")
	}

	logger.Infow("signing tokens",
		"apiKey", identity.KeyID,
		"apiSecret", identity.MaskedSecret(),
		"livekitURL", conf.LiveKitURL,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigChan
		logger.Infow("exit requested, shutting down", "signal", sig)
		server.Stop()
	}()

	return server.Start()
}

func getConfigString(configFile string, inConfigBody string) (string, error) {
	if inConfigBody != "" || configFile == "" {
		return inConfigBody, nil
	}

	outConfigBody, err := os.ReadFile(configFile)
	if err != nil {
		return "", err
	}

	return string(outConfigBody), nil
}
