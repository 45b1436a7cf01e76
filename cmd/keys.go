package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage secrets",
	Long:  `Commands for generating the secrets socialite needs.`,
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a session signing secret",
	Long:  `Generates a random secret for signing state tokens and session cookies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("failed to generate secret: %w", err)
		}
		fmt.Printf("SOCIALITE_SESSION_SECRET=%s\n", hex.EncodeToString(b))
		return nil
	},
}

var keysTokenCmd = &cobra.Command{
	Use:   "token [subject]",
	Short: "Generate a development identity token",
	Long:  `Generates a bearer token for the given subject, signed with SOCIALITE_IDENTITY_SECRET, for exercising the callback locally.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := os.Getenv("SOCIALITE_IDENTITY_SECRET")
		if secret == "" {
			return fmt.Errorf("SOCIALITE_IDENTITY_SECRET is not set")
		}

		claims := jwt.MapClaims{
			"sub": args[0],
			"iss": "socialite",
			"iat": time.Now().Unix(),
			"exp": time.Now().Add(24 * time.Hour).Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(secret))
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}

		fmt.Println(signed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysGenerateCmd)
	keysCmd.AddCommand(keysTokenCmd)
}
