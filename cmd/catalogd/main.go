package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/verdantlabs/catalogd/config"
	"github.com/verdantlabs/catalogd/internal/adminapi"
	"github.com/verdantlabs/catalogd/internal/app"
	"github.com/verdantlabs/catalogd/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	conffile = flag.String("c", "", "config yaml file")
	envfile  = flag.String("env", ".env", "dotenv file loaded before the environment overrides")
	hashpwd  = flag.String("hash", "", "print the bcrypt hash of a password for auth.users and exit")
	initdb   = flag.Bool("initdb", false, "drop and recreate all catalog tables, then exit")
)

func main() {
	flag.Parse()

	if *hashpwd != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*hashpwd), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(string(hash))
		return
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "catalogd:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(*envfile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "load %s", *envfile)
	}

	cfg, err := config.Load(*conffile)
	if err != nil {
		return err
	}
	if err := cfg.InitDirs(); err != nil {
		return err
	}
	if _, err := app.InitLogger(cfg.Logger); err != nil {
		return err
	}

	db, err := app.OpenDatabase(cfg.Database, cfg.System.Workdir)
	if err != nil {
		return err
	}
	application := app.NewApplication(cfg, db)
	defer application.Release()

	if *initdb {
		application.DropAll()
		if err := application.MigrateDB(cfg.Database.Debug); err != nil {
			return err
		}
		zap.S().Info("database initialized")
		return nil
	}

	if err := application.Init(); err != nil {
		return err
	}

	srv := webserver.NewAdminServer(application)
	adminapi.Init(srv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Start()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	zap.S().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorf("shutdown: %v", err)
	}
	application.Cleaner().Wait()
	return nil
}
