// Command createUser registers an account from the command line:
//
//	go run ./scripts/createUser -email aluno@example.com -password segredo123 [-role admin]
package main

import (
	"context"
	"flag"

	"campus/auth"
	"campus/config"
	"campus/database"
	"campus/logger"
	"campus/models"
)

func main() {
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "account password (min 6 characters)")
	role := flag.String("role", string(models.RoleStudent), "student or admin")
	flag.Parse()

	log := logger.New(logger.Options{Level: "info"}).With("create-user")
	if *email == "" || len(*password) < 6 {
		log.Fatal("Both -email and a -password of at least 6 characters are required")
	}

	conf, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration", err)
	}
	client, err := database.Connect(conf, log)
	if err != nil {
		log.Fatal("Failed to connect to the database", err)
	}
	defer client.Close()

	user, err := auth.NewAccounts(client.DB(), log).CreateUser(context.Background(), *email, *password, models.Role(*role))
	if err != nil {
		log.Fatal("Failed to create user", err)
	}
	log.Info("User created", logger.Fields{"id": user.ID, "email": user.Email, "role": *role})
}
