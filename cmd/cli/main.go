package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/infrastructure/auth"
	"github.com/crmkit/authcore/internal/infrastructure/config"
	"github.com/crmkit/authcore/internal/infrastructure/crypto"
)

// bcryptGenerate is swappable for tests.
var bcryptGenerate = bcrypt.GenerateFromPassword

func main() {
	rootCmd := &cobra.Command{
		Use:   "authcore-cli",
		Short: "AuthCore CLI tool",
		Long:  `Operational helpers for the AuthCore security service: mint and inspect tokens, manage encrypted configuration values.`,
	}

	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(secretCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Token operations",
	}
	cmd.AddCommand(tokenMintCmd())
	cmd.AddCommand(tokenInspectCmd())
	return cmd
}

func tokenMintCmd() *cobra.Command {
	var (
		secret string
		userID string
		tenant string
		roles  []string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint an access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			decoded, err := auth.DecodeRoles(roles)
			if err != nil {
				return err
			}
			perms := domain.ExpandPermissions(decoded, nil)
			permList := make([]domain.Permission, 0, len(perms))
			for p := range perms {
				permList = append(permList, p)
			}

			provider := auth.NewTokenProvider(resolveSecret(secret), ttl, ttl)
			token, err := provider.CreateAccessToken(userID, tenant, decoded, permList, auth.SessionMeta{})
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (or JWT_SECRET env)")
	cmd.Flags().StringVar(&userID, "user", "", "User ID (subject)")
	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant ID")
	cmd.Flags().StringSliceVar(&roles, "roles", nil, "Role codes, comma separated")
	cmd.Flags().DurationVar(&ttl, "ttl", 15*time.Minute, "Token lifetime")
	return cmd
}

func tokenInspectCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "inspect <token>",
		Short: "Verify and print a token's claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := auth.NewTokenProvider(resolveSecret(secret), 0, 0)
			claims, err := provider.Parse(args[0])
			if err != nil {
				return err
			}

			printJSON(map[string]any{
				"subject":     claims.Subject,
				"tenant_id":   claims.TenantID,
				"type":        claims.TokenType,
				"roles":       claims.Roles,
				"permissions": claims.Permissions,
				"session_id":  claims.SessionID,
				"device_id":   claims.DeviceID,
				"token_id":    truncate(claims.TokenID, 12),
				"issued_at":   claims.IssuedAtMillis(),
				"expires_at":  claims.ExpiresAtMillis(),
				"expired":     provider.IsExpired(args[0]),
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (or JWT_SECRET env)")
	return cmd
}

func secretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Encrypted configuration values",
	}

	var key string

	encryptCmd := &cobra.Command{
		Use:   "encrypt <plaintext>",
		Short: "Encrypt a value for use as an ENC(...) property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := crypto.NewEncryptor(resolveKey(key), zerolog.Nop())
			if err != nil {
				return err
			}
			blob, err := enc.Encrypt(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("ENC(%s)\n", blob)
			return nil
		},
	}
	encryptCmd.Flags().StringVar(&key, "key", "", "Base64 encryption key (or ENCRYPTION_KEY env)")

	decryptCmd := &cobra.Command{
		Use:   "decrypt <value>",
		Short: "Decrypt an ENC(...) property value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := crypto.NewEncryptor(resolveKey(key), zerolog.Nop())
			if err != nil {
				return err
			}
			blob := args[0]
			if config.IsEncryptedProperty(blob) {
				blob = strings.TrimSuffix(strings.TrimPrefix(blob, "ENC("), ")")
			}
			plain, err := enc.Decrypt(blob)
			if err != nil {
				return err
			}
			fmt.Println(plain)
			return nil
		},
	}
	decryptCmd.Flags().StringVar(&key, "key", "", "Base64 encryption key (or ENCRYPTION_KEY env)")

	keygenCmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a fresh encryption key",
		RunE: func(cmd *cobra.Command, args []string) error {
			generated, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Println(generated)
			return nil
		},
	}

	cmd.AddCommand(encryptCmd, decryptCmd, keygenCmd)
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Hash a password for seeding user records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Println(string(hash))
			return nil
		},
	}
}

func resolveSecret(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("JWT_SECRET")
}

func resolveKey(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("ENCRYPTION_KEY")
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
