package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/livekit/livekit-token-server/pkg/auth"
	"github.com/livekit/livekit-token-server/pkg/token"
)

type testStruct struct {
	configFileName string
	configBody     string

	expectedError      error
	expectedConfigBody string
}

func TestGetConfigString(t *testing.T) {
	dir := t.TempDir()
	tests := []testStruct{
		{"", "", nil, ""},
		{"", "configBody", nil, "configBody"},
		{filepath.Join(dir, "file"), "configBody", nil, "configBody"},
		{filepath.Join(dir, "file"), "", nil, "fileContent"},
	}
	for _, test := range tests {
		func() {
			writeConfigFile(test, t)
			defer os.Remove(test.configFileName)

			configBody, err := getConfigString(test.configFileName, test.configBody)
			require.Equal(t, test.expectedError, err)
			require.Equal(t, test.expectedConfigBody, configBody)
		}()
	}
}

func TestShouldReturnErrorIfConfigFileDoesNotExist(t *testing.T) {
	configBody, err := getConfigString("notExistingFile", "")
	require.Error(t, err)
	require.Empty(t, configBody)
}

func writeConfigFile(test testStruct, t *testing.T) {
	if test.configFileName != "" {
		d1 := []byte(test.expectedConfigBody)
		err := os.WriteFile(test.configFileName, d1, 0o644)
		require.NoError(t, err)
	}
}

func TestPermissionsFromFlags(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.Bool("publish", true, "")
	set.Bool("subscribe", true, "")
	set.Bool("publish-data", true, "")
	set.Bool("update-metadata", false, "")
	require.NoError(t, set.Parse([]string{"--publish=false", "--update-metadata"}))
	c := cli.NewContext(cli.NewApp(), set, nil)

	perms := permissionsFromFlags(c)
	require.NotNil(t, perms.CanPublish)
	require.False(t, *perms.CanPublish)
	require.Nil(t, perms.CanSubscribe)
	require.Nil(t, perms.CanPublishData)
	require.True(t, *perms.CanUpdateMetadata)
}

func TestPrintGrant(t *testing.T) {
	var buf bytes.Buffer
	printGrant(&buf, token.CapabilityGrant{
		Room:         "lobby",
		Participant:  "alice",
		CanSubscribe: true,
	}, time.Now().Add(10*time.Minute))

	out := buf.String()
	require.Contains(t, out, "lobby")
	require.Contains(t, out, "alice")
	require.Contains(t, out, "Expires")
}

func TestVerifyWithProvider(t *testing.T) {
	identity := auth.SigningIdentity{KeyID: "APIcli", Secret: "clisecretclisecretclisecretclisecret"}
	cred, err := token.NewIssuer(auth.NewAPIKeyTokenSigner(identity, nil)).
		Issue(context.Background(), token.JoinRequest{Room: "lobby", Participant: "alice"})
	require.NoError(t, err)

	provider := auth.NewSimpleKeyProvider(map[string]string{identity.KeyID: identity.Secret})
	v, grants, err := verifyWithProvider(provider, cred.Token)
	require.NoError(t, err)
	require.Equal(t, "APIcli", v.APIKey())
	require.WithinDuration(t, cred.ExpiresAt, v.ExpiresAt(), time.Second)
	require.Equal(t, "alice", grants.Identity)
	require.Equal(t, "lobby", grants.Video.Room)

	_, _, err = verifyWithProvider(auth.NewSimpleKeyProvider(map[string]string{"APIother": "x"}), cred.Token)
	require.Error(t, err)

	_, _, err = verifyWithProvider(auth.NewSimpleKeyProvider(map[string]string{identity.KeyID: "wrongsecretwrongsecretwrongsecret"}), cred.Token)
	require.Error(t, err)
}
