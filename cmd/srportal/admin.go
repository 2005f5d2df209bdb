package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/procare-io/srportal/internal/database"
	"github.com/procare-io/srportal/internal/repository"
	"github.com/procare-io/srportal/internal/server"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Apply pending schema migrations to the database configured under
database.*. With --seed the demo dataset is loaded unless it is already
present.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash for a user record",
	Long: `Read a password the same way "srportal login" does and print its bcrypt
hash, using auth.password.bcrypt_cost.`,
	Args: cobra.NoArgs,
	RunE: runHashPassword,
}

var seedFlag bool

func init() {
	migrateCmd.Flags().BoolVar(&seedFlag, "seed", false, "Load the demo dataset")
	hashPasswordCmd.Flags().StringVar(&passwordFileFlag, "password-file", "", "Read the password from this file")

	rootCmd.AddCommand(migrateCmd, hashPasswordCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if appCfg.Database.Driver == database.DriverMemory {
		return fmt.Errorf("database.driver is %q; nothing to migrate", database.DriverMemory)
	}
	qb, err := database.Open(ctx, appCfg.Database)
	if err != nil {
		return err
	}
	defer qb.Close()

	applied, err := database.Migrate(ctx, qb)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Applied %d migration(s) on %s\n", applied, qb.Driver())

	if seedFlag {
		store := repository.NewSQLStore(qb)
		if err := server.SeedIfEmpty(ctx, qb, store, appCfg.Auth.Password.BcryptCost); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		fmt.Fprintln(out, "Demo data present")
	}
	return nil
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), appCfg.Auth.Password.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(hash))
	return nil
}
