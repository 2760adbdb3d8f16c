// cmd/catalogctl/commands.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/your-org/saree-store/internal/config"
	"github.com/your-org/saree-store/internal/domain/product"
	"github.com/your-org/saree-store/internal/infrastructure/database/postgres"
	"github.com/your-org/saree-store/internal/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

var (
	cfg *config.Config
	log *logrus.Logger

	dryRun     bool
	dropTables bool
	bcryptCost int

	rootCmd = &cobra.Command{
		Use:          "catalogctl",
		Short:        "Operator tooling for the saree storefront",
		Long:         "catalogctl imports catalog sheets and manages the storefront database outside the API.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "hash-password" {
				return nil
			}
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			log = logger.New(cfg.Logging)
			return nil
		},
	}

	importCmd = &cobra.Command{
		Use:   "import [file.csv|file.xlsx]",
		Short: "Create or update products and variants from a catalog sheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Run schema migrations and create indexes",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Insert the admin account and the demo catalog",
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}

	hashPasswordCmd = &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for a password",
		Args:  cobra.ExactArgs(1),
		RunE:  runHashPassword,
	}
)

func init() {
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and validate the sheet without writing")
	migrateCmd.Flags().BoolVar(&dropTables, "drop", false, "Drop every table before migrating (destroys data)")
	hashPasswordCmd.Flags().IntVar(&bcryptCost, "cost", bcrypt.DefaultCost, "bcrypt cost")

	rootCmd.AddCommand(importCmd, migrateCmd, seedCmd, hashPasswordCmd)
}

func openMigration() (*postgres.Migration, func(), error) {
	conn, err := postgres.NewConnection(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewMigration(conn.GetDB(), log), func() { _ = conn.Close() }, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	var (
		rows      []product.ImportRow
		rowErrors []product.RowError
		err       error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, openErr := os.Open(path)
		if openErr != nil {
			return openErr
		}
		defer f.Close()
		rows, rowErrors, err = product.ParseCSV(f)
	case ".xlsx":
		rows, rowErrors, err = product.ParseXLSXFile(path)
	default:
		return fmt.Errorf("unsupported file type %q, expected .csv or .xlsx", filepath.Ext(path))
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, re := range rowErrors {
		fmt.Fprintf(out, "line %d: %s\n", re.Line, re.Message)
	}
	fmt.Fprintf(out, "%d rows parsed, %d rejected\n", len(rows), len(rowErrors))
	if dryRun {
		return nil
	}

	conn, err := postgres.NewConnection(cfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	result, err := product.NewImportService(conn.GetDB(), log).Import(cmd.Context(), rows, nil)
	if err != nil {
		return err
	}
	for _, re := range result.Errors {
		fmt.Fprintf(out, "line %d: %s\n", re.Line, re.Message)
	}
	fmt.Fprintf(out, "created %d, updated %d, failed %d\n", result.ProductsCreated, result.ProductsUpdated, len(result.Errors))
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	migration, closeDB, err := openMigration()
	if err != nil {
		return err
	}
	defer closeDB()

	if dropTables {
		if err := migration.DropAllTables(); err != nil {
			return err
		}
	}
	if err := migration.RunAutoMigrations(); err != nil {
		return err
	}
	if err := migration.CreateIndexes(); err != nil {
		return err
	}
	return printTables(cmd, migration)
}

func runSeed(cmd *cobra.Command, args []string) error {
	migration, closeDB, err := openMigration()
	if err != nil {
		return err
	}
	defer closeDB()

	err = migration.SeedInitialData(postgres.SeedOptions{
		AdminEmail:    cfg.Seed.AdminEmail,
		AdminPassword: cfg.Seed.AdminPassword,
		BcryptCost:    cfg.Security.BcryptCost,
	})
	if err != nil {
		return err
	}
	return printTables(cmd, migration)
}

func printTables(cmd *cobra.Command, migration *postgres.Migration) error {
	tables, err := migration.GetTableInfo()
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Fprintf(cmd.OutOrStdout(), "%-24s %d\n", t.Table, t.Rows)
	}
	return nil
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(hash))
	return nil
}
