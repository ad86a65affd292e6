package identity

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sunnah_sayings/internal/logger"
)

const testProjectID = "sunnah-sayings"

type mockIDTokenClient struct {
	mock.Mock
}

func (m *mockIDTokenClient) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	if tok := args.Get(0); tok != nil {
		return tok.(*auth.Token), args.Error(1)
	}
	return nil, args.Error(1)
}

var errCertFetch = errors.New("failed to fetch public key certificates")

func newTestFirebaseVerifier(client idTokenClient) *FirebaseVerifier {
	v := newFirebaseVerifier(client, logger.New(logger.TestConfig()))
	v.providerFailure = func(err error) bool {
		return errors.Is(err, errCertFetch) || isProviderFailure(err)
	}
	return v
}

func validToken() *auth.Token {
	now := time.Now()
	return &auth.Token{
		Issuer:   "https://securetoken.google.com/" + testProjectID,
		Audience: testProjectID,
		Subject:  "firebase-uid",
		UID:      "firebase-uid",
		IssuedAt: now.Add(-time.Minute).Unix(),
		Expires:  now.Add(time.Hour).Unix(),
		AuthTime: now.Add(-2 * time.Minute).Unix(),
		Firebase: auth.FirebaseInfo{SignInProvider: "google.com"},
		Claims: map[string]interface{}{
			"email":          "reader@example.com",
			"email_verified": true,
			"name":           "Reader",
		},
	}
}

func TestNewFirebaseVerifier_RequiresProjectID(t *testing.T) {
	_, err := NewFirebaseVerifier(context.Background(), FirebaseConfig{})
	assert.Error(t, err)
}

func TestFirebaseVerifier_ValidToken(t *testing.T) {
	client := new(mockIDTokenClient)
	tok := validToken()
	client.On("VerifyIDToken", mock.Anything, "id-token").Return(tok, nil)

	claim, err := newTestFirebaseVerifier(client).Verify(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "firebase-uid", claim.Subject)
	assert.Equal(t, "reader@example.com", claim.Email)
	assert.True(t, claim.EmailVerified)
	assert.Equal(t, "Reader", claim.Name)
	assert.Equal(t, "google.com", claim.SignInProvider)
	assert.Equal(t, tok.AuthTime, claim.AuthTime.Unix())
	assert.Equal(t, tok.Expires, claim.ExpiresAt.Unix())
}

func TestFirebaseVerifier_Rejections(t *testing.T) {
	tests := map[string]error{
		"expired":         errors.New("ID token has expired"),
		"wrong audience":  errors.New(`ID token has invalid 'aud' (audience) claim`),
		"bad signature":   errors.New("failed to verify token signature"),
		"unknown kid":     errors.New("failed to verify token signature"),
		"malformed token": errors.New("incorrect number of segments"),
	}

	for name, verr := range tests {
		t.Run(name, func(t *testing.T) {
			client := new(mockIDTokenClient)
			client.On("VerifyIDToken", mock.Anything, "tok").Return(nil, verr)

			_, err := newTestFirebaseVerifier(client).Verify(context.Background(), "tok")
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.NotErrorIs(t, err, ErrProviderUnavailable)
		})
	}
}

func TestFirebaseVerifier_RejectsTokenWithoutSubject(t *testing.T) {
	client := new(mockIDTokenClient)
	tok := validToken()
	tok.UID = ""
	client.On("VerifyIDToken", mock.Anything, "tok").Return(tok, nil)

	_, err := newTestFirebaseVerifier(client).Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFirebaseVerifier_ProviderUnavailable(t *testing.T) {
	for name, verr := range map[string]error{
		"certificate fetch": fmt.Errorf("verify: %w", errCertFetch),
		"deadline":          fmt.Errorf("verify: %w", context.DeadlineExceeded),
	} {
		t.Run(name, func(t *testing.T) {
			client := new(mockIDTokenClient)
			client.On("VerifyIDToken", mock.Anything, "tok").Return(nil, verr)

			_, err := newTestFirebaseVerifier(client).Verify(context.Background(), "tok")
			assert.ErrorIs(t, err, ErrProviderUnavailable)
		})
	}
}

// Verify does no key handling of its own: every token, known key or not,
// is one call into the SDK and nothing else.
func TestFirebaseVerifier_OneSDKCallPerToken(t *testing.T) {
	var calls atomic.Int32
	client := new(mockIDTokenClient)
	client.On("VerifyIDToken", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { calls.Add(1) }).
		Return(nil, errors.New("failed to verify token signature"))
	v := newTestFirebaseVerifier(client)

	for i := 0; i < 50; i++ {
		_, err := v.Verify(context.Background(), fmt.Sprintf("token-with-kid-bogus-%d", i))
		require.ErrorIs(t, err, ErrInvalidToken)
	}
	assert.Equal(t, int32(50), calls.Load())
}
