// Command admin creates a vault account against the configured database,
// prompting for the password without echo. Intended for bootstrapping the
// first account of a deployment.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/passvault-io/passvault/internal/common"
	"github.com/passvault-io/passvault/internal/logging"
	"github.com/passvault-io/passvault/internal/server/config"
	"github.com/passvault-io/passvault/internal/server/repositories/repomanager"
	"github.com/passvault-io/passvault/internal/server/services"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func main() {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	var userName string
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	flag.StringVar(&userName, "u", "", "username for the new account")
	flag.Parse()

	if userName == "" {
		fmt.Fprintln(os.Stderr, "usage: admin -u <username> [-d <dsn>]")
		os.Exit(1)
	}

	fmt.Print("Password: ")
	password, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		log.Fatalf("reading password: %v", err)
	}
	if len(password) == 0 {
		log.Fatal("password must not be empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations error: %v", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	accountService := services.NewAccountService(db, m, cfg, logger)

	account, err := accountService.Register(ctx, userName, string(password))
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			log.Fatalf("account %q already exists", userName)
		}
		log.Fatalf("creating account: %v", err)
	}

	fmt.Printf("created account %s (%s)\n", account.UserName, account.ID)
}
