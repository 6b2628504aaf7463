// cmd/seeder/main.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unclebandit/autoreachpro-backend/internal/config"
	"github.com/unclebandit/autoreachpro-backend/internal/db"
	"github.com/unclebandit/autoreachpro-backend/internal/logger"
	"github.com/unclebandit/autoreachpro-backend/internal/repository"
	"github.com/unclebandit/autoreachpro-backend/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Prepare an AutoReachPro database for local use",
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(conn *sql.DB, zl *zap.Logger) error {
			if err := db.Migrate(cmd.Context(), conn); err != nil {
				return err
			}
			fmt.Println("Schema applied")
			return nil
		})
	},
}

var (
	tenantID  string
	email     string
	fullName  string
	tokenTTL  time.Duration
	withToken bool
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Create a tenant profile with the default templates",
	Long: `Create a starter-tier profile for --user-id and seed the three default
email templates. With --token a bearer token for the new tenant is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(conn *sql.DB, zl *zap.Logger) error {
			svc := &service.ProfileService{
				ProfileRepo: &repository.ProfileRepository{DB: conn},
				Templates:   &service.TemplateService{TemplateRepo: &repository.TemplateRepository{DB: conn}, Log: zl},
				Log:         zl,
			}
			res, err := svc.Setup(cmd.Context(), tenantID, email, fullName)
			if err != nil {
				return err
			}
			fmt.Printf("Seeded tenant %s (%s) with %d templates\n", res.Profile.ID, res.Profile.Email, res.Templates)

			if withToken {
				return printToken(tenantID)
			}
			return nil
		})
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a bearer token for --user-id signed with JWT_SECRET",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printToken(tenantID)
	},
}

func init() {
	tenantCmd.Flags().StringVar(&tenantID, "user-id", "", "tenant id (JWT subject)")
	tenantCmd.Flags().StringVar(&email, "email", "", "tenant email")
	tenantCmd.Flags().StringVar(&fullName, "full-name", "", "display name, defaults to the email local part")
	tenantCmd.Flags().BoolVar(&withToken, "token", false, "also print a bearer token")
	tenantCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	tenantCmd.MarkFlagRequired("user-id")
	tenantCmd.MarkFlagRequired("email")

	tokenCmd.Flags().StringVar(&tenantID, "user-id", "", "tenant id (JWT subject)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	tokenCmd.MarkFlagRequired("user-id")

	rootCmd.AddCommand(migrateCmd, tenantCmd, tokenCmd)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func withDB(ctx context.Context, fn func(conn *sql.DB, zl *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer zl.Sync()

	conn, err := db.Open(ctx, cfg.DatabaseURL, cfg.DBConnectTimeout, zl)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn, zl)
}

func printToken(subject string) error {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}).SignedString([]byte(secret))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
