package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/varsha-shop/internal/auth"
	"github.com/example/varsha-shop/internal/config"
	"github.com/example/varsha-shop/internal/domain/product"
	"github.com/example/varsha-shop/internal/domain/user"
	"github.com/example/varsha-shop/internal/email"
	"github.com/example/varsha-shop/internal/infrastructure/store"
	"github.com/example/varsha-shop/internal/query"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "shopctl",
		Short:        "Operator tasks for the shop datastore",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(bootstrapAdminCmd())
	rootCmd.AddCommand(importProductsCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(backupCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type env struct {
	cfg   *config.Config
	store *store.DocumentStore
	close func()
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	backend, release, err := store.OpenBackend(ctx, store.OpenOptions{
		Kind:           cfg.Datastore,
		Path:           cfg.DBPath,
		DatabaseURL:    cfg.DatabaseURL,
		DynamoTable:    cfg.DynamoTable,
		DynamoEndpoint: cfg.DynamoEndpoint,
	})
	if err != nil {
		return nil, err
	}
	ds := store.NewDocumentStore(backend)
	return &env{
		cfg:   cfg,
		store: ds,
		close: func() {
			_ = ds.Close()
			_ = release()
		},
	}, nil
}

func bootstrapAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap-admin",
		Short: "Create or promote the admin account",
		Long: `Create the admin account, or promote an existing account with the same
email to admin. Defaults come from ADMIN_EMAIL and ADMIN_PASSWORD.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			emailAddr, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if emailAddr == "" {
				emailAddr = e.cfg.AdminEmail
			}
			if password == "" {
				password = e.cfg.AdminPassword
			}
			emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
			if !strings.Contains(emailAddr, "@") || len(password) < auth.MinPasswordLength {
				return fmt.Errorf("a valid email and a password of at least %d characters are required", auth.MinPasswordLength)
			}

			jwtService := auth.NewJWTService(e.cfg.JWTSecret, e.cfg.JWTExpiresIn)
			changed, err := user.NewService(e.store, jwtService).EnsureAdmin(ctx, emailAddr, password)
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "Admin ready: %s\n", emailAddr)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Admin already present: %s\n", emailAddr)
			}
			return nil
		},
	}

	cmd.Flags().String("email", "", "Admin email (default ADMIN_EMAIL)")
	cmd.Flags().String("password", "", "Admin password (default ADMIN_PASSWORD)")

	return cmd
}

func importProductsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-products [file]",
		Short: "Create or replace catalogue entries from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			inputs, err := parseSeed(args[0], data)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			svc := product.NewService(e.store, product.Defaults{Brand: e.cfg.StoreBrand, Currency: e.cfg.StoreCurrency})
			result, err := svc.Import(ctx, inputs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d products (%d created, %d updated)\n",
				result.Created+result.Updated, result.Created, result.Updated)
			return nil
		},
	}
}

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the sales summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			summary, err := query.NewHandler(e.store, e.cfg.StoreCurrency).SalesSummary(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			printSummary(out, summary)
			return nil
		},
	}

	cmd.Flags().BoolP("json", "j", false, "Output as JSON")

	return cmd
}

func backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the current document to a backup location",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			location, err := e.store.Backup(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", location)
			return nil
		},
	}
}

func money(total float64, currency string) string {
	return email.FormatMoney(&total, currency)
}
