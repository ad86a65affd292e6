package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"sunnah_sayings/internal/identity"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultIssuer = "sunnah-sayings-dev"

type tokenOptions struct {
	email   string
	subject string
	name    string
	secret  string
	issuer  string
	ttl     time.Duration
}

func main() {
	_ = godotenv.Load()
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCommand mints HS256 identity tokens accepted by the server when
// IDENTITY_PROVIDER=hmac
func newRootCommand(out io.Writer) *cobra.Command {
	opts := tokenOptions{}
	cmd := &cobra.Command{
		Use:           "devtoken",
		Short:         "Mint a local identity token for the hmac provider",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			token, err := mint(opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, token)
			return err
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", "", "Email carried by the token (required)")
	cmd.Flags().StringVar(&opts.subject, "subject", "", "Subject uid; defaults to the email")
	cmd.Flags().StringVar(&opts.name, "name", "", "Display name")
	cmd.Flags().StringVar(&opts.secret, "secret", os.Getenv("IDENTITY_HMAC_SECRET"), "Signing secret")
	cmd.Flags().StringVar(&opts.issuer, "issuer", envOr("IDENTITY_HMAC_ISSUER", defaultIssuer), "Token issuer")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func mint(opts tokenOptions) (string, error) {
	email := strings.ToLower(strings.TrimSpace(opts.email))
	if email == "" {
		return "", errors.New("--email is required")
	}
	if opts.secret == "" {
		return "", errors.New("--secret or IDENTITY_HMAC_SECRET is required")
	}
	if opts.ttl <= 0 {
		return "", fmt.Errorf("--ttl must be positive, got %s", opts.ttl)
	}
	subject := opts.subject
	if subject == "" {
		subject = email
	}

	v := identity.NewHMACVerifier(opts.secret, opts.issuer, opts.ttl)
	return v.IssueToken(identity.Claim{
		Subject:       subject,
		Email:         email,
		EmailVerified: true,
		Name:          opts.name,
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
