package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/stretchr/testify/require"

	"github.com/livekit/livekit-token-server/pkg/auth"
	"github.com/livekit/livekit-token-server/pkg/utils"
)

func TestAccessToken(t *testing.T) {
	t.Run("keys must be set", func(t *testing.T) {
		token := auth.NewAccessToken("", "")
		_, err := token.ToJWT()
		require.Equal(t, auth.ErrKeysMissing, err)
	})

	t.Run("generates a decodeable key", func(t *testing.T) {
		apiKey, secret := apiKeypair()
		videoGrant := &auth.VideoGrant{RoomJoin: true, Room: "myroom"}
		videoGrant.SetCanPublish(false)
		at := auth.NewAccessToken(apiKey, secret).
			SetVideoGrant(videoGrant).
			SetValidFor(time.Minute * 5).
			SetIdentity("user")
		value, err := at.ToJWT()
		require.NoError(t, err)

		require.Len(t, strings.Split(value, "."), 3)

		// ensure it's a valid JWT
		token, err := jwt.ParseSigned(value)
		require.NoError(t, err)

		decodedGrant := auth.ClaimGrants{}
		err = token.UnsafeClaimsWithoutVerification(&decodedGrant)
		require.NoError(t, err)

		require.EqualValues(t, videoGrant, decodedGrant.Video)
	})

	t.Run("standard claims", func(t *testing.T) {
		apiKey, secret := apiKeypair()
		issuedAt := time.Unix(1700000000, 0)
		value, err := auth.NewAccessToken(apiKey, secret).
			SetIdentity("alice").
			SetID("TK_1").
			SetIssuedAt(issuedAt).
			SetValidFor(10 * time.Minute).
			ToJWT()
		require.NoError(t, err)

		token, err := jwt.ParseSigned(value)
		require.NoError(t, err)
		claims := jwt.Claims{}
		require.NoError(t, token.UnsafeClaimsWithoutVerification(&claims))

		require.Equal(t, apiKey, claims.Issuer)
		require.Equal(t, "alice", claims.Subject)
		require.Equal(t, "TK_1", claims.ID)
		require.Equal(t, issuedAt, claims.NotBefore.Time())
		require.Equal(t, issuedAt.Add(10*time.Minute), claims.Expiry.Time())
	})

	t.Run("id defaults to identity", func(t *testing.T) {
		apiKey, secret := apiKeypair()
		value, err := auth.NewAccessToken(apiKey, secret).SetIdentity("bob").ToJWT()
		require.NoError(t, err)

		token, err := jwt.ParseSigned(value)
		require.NoError(t, err)
		claims := jwt.Claims{}
		require.NoError(t, token.UnsafeClaimsWithoutVerification(&claims))
		require.Equal(t, "bob", claims.ID)
	})
}

func TestAPIKeyTokenSigner(t *testing.T) {
	apiKey, secret := apiKeypair()
	identity := auth.SigningIdentity{KeyID: apiKey, Secret: secret}

	n := 0
	signer := auth.NewAPIKeyTokenSigner(identity, func() string {
		n++
		return "TK_" + strings.Repeat("x", n)
	})
	require.Equal(t, apiKey, signer.KeyID())

	grant := &auth.VideoGrant{RoomJoin: true, Room: "team-standup"}
	grant.SetCanUpdateOwnMetadata(false)
	grants := &auth.ClaimGrants{Identity: "Alice", Video: grant}

	now := time.Now().Truncate(time.Second)
	first, err := signer.Sign(grants, now, 10*time.Minute)
	require.NoError(t, err)
	second, err := signer.Sign(grants, now, 10*time.Minute)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	for _, raw := range []string{first, second} {
		v, err := auth.ParseAPIToken(raw)
		require.NoError(t, err)
		decoded, err := v.Verify(secret)
		require.NoError(t, err)
		require.Equal(t, "Alice", decoded.Identity)
		require.EqualValues(t, grant, decoded.Video)
	}

	t.Run("missing secret", func(t *testing.T) {
		s := auth.NewAPIKeyTokenSigner(auth.SigningIdentity{KeyID: apiKey}, nil)
		_, err := s.Sign(grants, now, time.Minute)
		require.ErrorIs(t, err, auth.ErrKeysMissing)
	})
}

func TestMaskedSecret(t *testing.T) {
	require.Equal(t, "***cret", auth.SigningIdentity{Secret: "secretsecret"}.MaskedSecret())
	require.Equal(t, "***", auth.SigningIdentity{Secret: "abc"}.MaskedSecret())
}

func apiKeypair() (string, string) {
	return utils.NewAPIKey(), utils.RandomSecret()
}
