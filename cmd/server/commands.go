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
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/livekit/livekit-token-server/pkg/auth"
	"github.com/livekit/livekit-token-server/pkg/config"
	"github.com/livekit/livekit-token-server/pkg/token"
	"github.com/livekit/livekit-token-server/pkg/utils"
)

func generateKeys(_ *cli.Context) error {
	fmt.Println("API Key: ", utils.NewAPIKey())
	fmt.Println("API Secret: ", utils.RandomSecret())
	return nil
}

func helpVerbose(c *cli.Context) error {
	generatedFlags, err := config.GenerateCLIFlags(baseFlags, false)
	if err != nil {
		return err
	}

	c.App.Flags = append(baseFlags, generatedFlags...)
	return cli.ShowAppHelp(c)
}

func createToken(c *cli.Context) error {
	conf, err := getConfig(c)
	if err != nil {
		return err
	}
	identity, err := conf.SigningIdentity()
	if err != nil {
		return err
	}

	issuer := token.NewIssuer(auth.NewAPIKeyTokenSigner(identity, utils.NewTokenID))
	cred, err := issuer.Issue(c.Context, token.JoinRequest{
		Room:        c.String("room"),
		Participant: c.String("identity"),
		Permissions: permissionsFromFlags(c),
	})
	if err != nil {
		return errors.Wrap(err, "could not create token")
	}

	printGrant(os.Stdout, cred.Grant, cred.ExpiresAt)
	fmt.Println("Token:", cred.Token)
	return nil
}

func permissionsFromFlags(c *cli.Context) token.Permissions {
	flag := func(name string) *bool {
		if !c.IsSet(name) {
			return nil
		}
		v := c.Bool(name)
		return &v
	}
	return token.Permissions{
		CanPublish:        flag("publish"),
		CanSubscribe:      flag("subscribe"),
		CanPublishData:    flag("publish-data"),
		CanUpdateMetadata: flag("update-metadata"),
	}
}

func verifyToken(c *cli.Context) error {
	conf, err := getConfig(c)
	if err != nil {
		return err
	}

	v, grants, err := verifyWithProvider(auth.NewSimpleKeyProvider(conf.Keys), c.String("token"))
	if err != nil {
		return err
	}

	printGrant(os.Stdout, token.CapabilityGrant{
		Room:              grants.Video.Room,
		Participant:       grants.Identity,
		CanPublish:        grants.Video.GetCanPublish(),
		CanSubscribe:      grants.Video.GetCanSubscribe(),
		CanPublishData:    grants.Video.GetCanPublishData(),
		CanUpdateMetadata: grants.Video.GetCanUpdateOwnMetadata(),
	}, v.ExpiresAt())
	fmt.Println("Signed with:", v.APIKey())
	return nil
}

// verifyWithProvider checks a token against the secret of the key it names
func verifyWithProvider(provider auth.KeyProvider, raw string) (*auth.APIKeyTokenVerifier, *auth.ClaimGrants, error) {
	v, err := auth.ParseAPIToken(raw)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not parse token")
	}
	secret := provider.GetSecret(v.APIKey())
	if secret == "" {
		return nil, nil, fmt.Errorf("api key %s is not configured", v.APIKey())
	}
	grants, err := v.Verify(secret)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid token")
	}
	if grants.Video == nil {
		return nil, nil, errors.New("token carries no room grant")
	}
	return v, grants, nil
}

// printGrant renders a grant as a table. A zero expiry is omitted.
func printGrant(w io.Writer, grant token.CapabilityGrant, expiresAt time.Time) {
	table := tablewriter.NewWriter(w)
	table.SetRowLine(true)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Field", "Value"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	table.Append([]string{"Room", grant.Room})
	table.Append([]string{"Identity", grant.Participant})
	table.Append([]string{"Can Publish", strconv.FormatBool(grant.CanPublish)})
	table.Append([]string{"Can Subscribe", strconv.FormatBool(grant.CanSubscribe)})
	table.Append([]string{"Can Publish Data", strconv.FormatBool(grant.CanPublishData)})
	table.Append([]string{"Can Update Metadata", strconv.FormatBool(grant.CanUpdateMetadata)})
	if !expiresAt.IsZero() {
		table.Append([]string{"Expires", fmt.Sprintf("%s (%s)", expiresAt.Format(time.RFC3339), humanize.Time(expiresAt))})
	}
	table.Render()
}
