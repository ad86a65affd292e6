package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"sunnah_sayings/internal/logger"
)

// idTokenClient is the part of the Firebase Admin auth client used to
// verify ID tokens. It checks signature, audience, issuer, expiry and
// subject, and caches Google's signing certificates per Cache-Control.
type idTokenClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseConfig configures the Firebase ID token verifier.
type FirebaseConfig struct {
	// ProjectID is the Firebase project the tokens must be issued for.
	ProjectID string
	// CredentialsJSON is a service account document. When empty the
	// application default credentials are used.
	CredentialsJSON []byte
	// Options are appended to the client options, after the credentials.
	Options []option.ClientOption
	Logger  logger.Logger
}

// FirebaseVerifier validates Firebase Authentication ID tokens with the
// Firebase Admin SDK.
type FirebaseVerifier struct {
	client          idTokenClient
	log             logger.Logger
	providerFailure func(error) bool
}

// NewFirebaseVerifier creates a verifier for the given project
func NewFirebaseVerifier(ctx context.Context, cfg FirebaseConfig) (*FirebaseVerifier, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firebase project id is required")
	}

	var opts []option.ClientOption
	if len(cfg.CredentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	}
	opts = append(opts, cfg.Options...)

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}
	return newFirebaseVerifier(client, cfg.Logger), nil
}

func newFirebaseVerifier(client idTokenClient, log logger.Logger) *FirebaseVerifier {
	if log == nil {
		log = logger.New(logger.DefaultConfig())
	}
	return &FirebaseVerifier{
		client:          client,
		log:             log,
		providerFailure: isProviderFailure,
	}
}

// isProviderFailure reports errors that say nothing about the token itself
func isProviderFailure(err error) bool {
	return auth.IsCertificateFetchFailed(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// Verify validates a Firebase ID token and returns its claim
func (v *FirebaseVerifier) Verify(ctx context.Context, tokenString string) (*Claim, error) {
	token, err := v.client.VerifyIDToken(ctx, tokenString)
	if err != nil {
		if v.providerFailure(err) {
			v.log.Warn("Firebase certificates unavailable", "error", err)
			return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if token.UID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claimFromToken(token), nil
}

func claimFromToken(t *auth.Token) *Claim {
	c := &Claim{
		Subject:        t.UID,
		SignInProvider: t.Firebase.SignInProvider,
		IssuedAt:       unixTime(t.IssuedAt),
		ExpiresAt:      unixTime(t.Expires),
		AuthTime:       unixTime(t.AuthTime),
	}
	c.Email, _ = t.Claims["email"].(string)
	c.EmailVerified, _ = t.Claims["email_verified"].(bool)
	c.Name, _ = t.Claims["name"].(string)
	c.Picture, _ = t.Claims["picture"].(string)
	return c
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
