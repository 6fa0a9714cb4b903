package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus/auth"
	"campus/config"
	"campus/database"
	"campus/logger"
	"campus/routers"
	"campus/services/admin"
	"campus/services/catalog"
	"campus/services/leads"
	"campus/services/materials"
	"campus/services/progress"
	"campus/storage"
	"campus/utils"
	"campus/views"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		logger.New(logger.Options{}).Fatal("Invalid configuration", err)
	}

	log := logger.New(logger.Options{
		Level:        conf.LogLevel,
		RollbarToken: conf.RollbarToken,
		Env:          conf.Env,
		Version:      conf.Version,
	})
	defer log.Close()

	client, err := database.Connect(conf, log)
	if err != nil {
		log.Fatal("Failed to connect to the database", err)
	}
	defer client.Close()

	accounts := auth.NewAccounts(client.DB(), log)
	if conf.AdminEmail != "" {
		if err := accounts.EnsureAdmin(context.Background(), conf.AdminEmail, conf.AdminPassword); err != nil {
			log.Fatal("Failed to bootstrap admin user", err)
		}
	}

	store, err := storage.NewLocalStore(conf.StorageDir)
	if err != nil {
		log.Fatal("Failed to prepare storage directory", err)
	}
	signer := storage.NewSigner(conf.StorageSigningSecret, conf.AppURL)

	renderer, err := views.New()
	if err != nil {
		log.Fatal("Failed to load templates", err)
	}

	guard := auth.NewGuard(client, log)
	cat := catalog.New(log)
	files := materials.NewService(client, store, signer, log)
	revalidator := utils.NewWebhookRevalidator(conf.RevalidateWebhookURL, conf.RevalidateWebhookSecret, log)
	mailer := utils.NewLeadMailer(conf.SendgridAPIKey, conf.MailFrom, conf.LeadNotifyEmail, log)

	sweep, err := utils.InitializeUploadScheduler(files, conf.PendingUploadTTL, log)
	if err != nil {
		log.Fatal("Failed to start upload scheduler", err)
	}
	defer sweep.Stop()

	app := routers.NewApp(routers.Deps{
		Sessions:      client,
		Accounts:      accounts,
		Tokens:        auth.NewTokens(conf.JWTKey),
		Guard:         guard,
		Catalog:       cat,
		Admin:         admin.NewService(client, guard, cat, files, revalidator, log).WithErrorDetails(!conf.IsProduction()),
		Materials:     files,
		Progress:      progress.NewService(client, log),
		Leads:         leads.NewService(mailer, log),
		Store:         store,
		Signer:        signer,
		Views:         renderer,
		Log:           log,
		Version:       conf.Version,
		AllowOrigins:  conf.AppURL,
		SecureCookies: conf.SecureCookies,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("Server shutdown failed", err)
		}
	}()

	log.Info("Server is running", logger.Fields{"port": conf.Port, "env": conf.Env})
	if err := app.Listen(":" + conf.Port); err != nil {
		log.Fatal("Server stopped", err)
	}
}
