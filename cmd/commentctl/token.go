package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"comment-history-api/internal/domain"
	"comment-history-api/internal/repository"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <user-id|username>",
	Short: "Mint a bearer token for an existing user (development only)",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (defaults to jwt.ttl from config)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if e.cfg.JWT.Secret == "" {
		return errors.New("jwt.secret is not configured")
	}

	ctx, cancel := newContext()
	defer cancel()

	targets := repository.NewTargetRepository(e.db)
	var user *domain.User
	if id, parseErr := uuid.Parse(args[0]); parseErr == nil {
		user, err = targets.FindUserByID(ctx, id)
	} else {
		user, err = targets.FindUserByUsername(ctx, args[0])
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("user %q not found", args[0])
	}
	if err != nil {
		return err
	}

	ttl := tokenTTL
	if ttl <= 0 {
		ttl = e.cfg.JWT.TTL
	}
	signed, err := mintToken(e.cfg.JWT.Secret, user.ID, ttl, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), signed)
	return nil
}

// mintToken signs an HS256 token carrying the claims the API's auth middleware reads
func mintToken(secret string, userID uuid.UUID, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"sub":     userID.String(),
		"iat":     now.Unix(),
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
