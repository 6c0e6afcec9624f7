// Command keytool maintains the encrypted AI provider keys:
//
//	keytool encrypt-legacy [server flags]
//	keytool decrypt-all [server flags]
//	keytool rotate [-n new-secret] [server flags]
//
// Server flags (-d, -s, -x, -i, ...) and DOCCOON_* variables select the
// database and the current vault secret exactly as for the server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/doccoon/internal/cryptox"
	"github.com/dmitrijs2005/doccoon/internal/logging"
	"github.com/dmitrijs2005/doccoon/internal/server"
	"github.com/dmitrijs2005/doccoon/internal/server/config"
	"github.com/dmitrijs2005/doccoon/internal/server/keytool"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/doccoon/internal/server/services"
)

func main() {
	opts, err := keytool.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts keytool.Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	db, err := server.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	vault, err := cryptox.NewVault([]byte(cfg.SecretKey), cfg.KDFParams())
	if err != nil {
		return err
	}

	creds := services.NewCredentialService(db, m, vault, logger)
	return keytool.Run(ctx, creds, opts, cfg.KDFParams(), keytool.PromptSecret(os.Stderr), os.Stdout)
}
