// Command ecoleta-admin applies the schema, seeds reference data and hashes
// staff credentials.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/ecoleta/ecoleta-go/internal/crypto"
	"github.com/ecoleta/ecoleta-go/internal/repository"
)

const commandTimeout = 30 * time.Second

func main() {
	_ = godotenv.Load()

	if err := app().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:  "ecoleta-admin",
		Usage: "Ecoleta operator tool",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dsn",
				Usage:   "MySQL data source name",
				EnvVars: []string{"DATABASE_DSN"},
				Value:   "root:password@tcp(127.0.0.1:3306)/ecoleta?parseTime=true",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply the database schema",
				Action: runMigrate,
			},
			{
				Name:   "seed",
				Usage:  "Create the admin user and default material types when absent",
				Action: runSeed,
			},
			{
				Name:      "hash-password",
				Usage:     "Print a credential hash for a password",
				ArgsUsage: "<password>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "algo",
						Usage: "bcrypt or argon2id",
						Value: "bcrypt",
					},
				},
				Action: runHashPassword,
			},
		},
	}
}

func openDB(c *cli.Context) (*sql.DB, error) {
	return repository.NewDB(c.String("dsn"))
}

func runMigrate(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(c.Context, commandTimeout)
	defer cancel()

	if err := repository.Migrate(ctx, db); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "schema applied")
	return nil
}

func runSeed(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(c.Context, commandTimeout)
	defer cancel()

	report, err := seed(ctx, repository.NewUserRepository(db), repository.NewMaterialRepository(db))
	if err != nil {
		return err
	}
	report.print(c.App.Writer)
	return nil
}

func runHashPassword(c *cli.Context) error {
	password := c.Args().First()
	if password == "" {
		return errors.New("password argument is required")
	}

	hash, err := hashPassword(c.String("algo"), password)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, hash)
	return nil
}

func hashPassword(algo, password string) (string, error) {
	switch algo {
	case "bcrypt":
		return crypto.HashPasswordBcrypt(password)
	case "argon2id":
		return crypto.HashPassword(password)
	default:
		return "", fmt.Errorf("unknown algorithm %q, use bcrypt or argon2id", algo)
	}
}
