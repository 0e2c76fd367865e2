package main

import (
	"log"

	"github.com/StreamPilotHQ/StreamPilot/app/models"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/database"
	"github.com/StreamPilotHQ/StreamPilot/internal/pkg/env"
)

type seedAccount struct {
	name     string
	email    string
	password string
	credits  int64
}

var seedAccounts = []seedAccount{
	{name: "demo", email: "demo@streampilot.io", password: "demo-password", credits: 100},
	{name: "creator", email: "creator@streampilot.io", password: "creator-password", credits: 500},
}

func main() {
	env.SetupEnvFile()
	database.SetupDatabase()

	db := database.GetDB()

	for _, acc := range seedAccounts {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ?", acc.email).Count(&count).Error; err != nil {
			log.Fatalf("Failed to check for existing account %s: %v", acc.email, err)
		}
		if count > 0 {
			log.Printf("Account %s already exists, skipping", acc.email)
			continue
		}

		user, err := models.CreateUser(acc.name, acc.email, acc.password, acc.credits)
		if err != nil {
			log.Fatalf("Failed to build account %s: %v", acc.email, err)
		}
		if err := db.Create(user).Error; err != nil {
			log.Fatalf("Failed to create account %s: %v", acc.email, err)
		}
		log.Printf("Created account %s (id %d) with %d credits", acc.email, user.ID, acc.credits)
	}
}
