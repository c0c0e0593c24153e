package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/plexusfit/fitplan/internal/config"
	"github.com/plexusfit/fitplan/internal/db"
	"github.com/plexusfit/fitplan/internal/model"
	"github.com/plexusfit/fitplan/internal/repository"
)

// Demo identities for local development. Passwords are all "fitplan123".
var seedUsers = []struct {
	Email   string
	Name    string
	IsAdmin bool
	Sex     string
	Age     int
	Height  float64
	Weight  float64
	Goal    string
}{
	{Email: "admin@plexus.es", Name: "Admin", IsAdmin: true},
	{Email: "marta@example.com", Name: "Marta", Sex: "female", Age: 29, Height: 167, Weight: 61, Goal: "tone up"},
	{Email: "diego@example.com", Name: "Diego", Sex: "male", Age: 35, Height: 180, Weight: 88, Goal: "lose weight"},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.AuthUser{}, &model.Profile{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	users := repository.NewAuthUserRepository(gormDB)
	profiles := repository.NewProfileRepository(gormDB)

	hash, err := bcrypt.GenerateFromPassword([]byte("fitplan123"), 10)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	created := 0
	for _, s := range seedUsers {
		if existing, err := users.FindByEmail(ctx, s.Email); err == nil && existing != nil {
			log.Printf("Skipping %s (already seeded)", s.Email)
			continue
		}

		now := time.Now()
		user := &model.AuthUser{
			ID:               uuid.New(),
			Email:            s.Email,
			PasswordHash:     string(hash),
			EmailConfirmedAt: &now,
		}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create auth user %s: %v", s.Email, err)
		}

		profile := &model.Profile{
			ID:       user.ID,
			Email:    s.Email,
			Name:     s.Name,
			IsAdmin:  s.IsAdmin,
			Active:   true,
			Sex:      s.Sex,
			Age:      s.Age,
			HeightCM: s.Height,
			WeightKG: s.Weight,
			Goal:     s.Goal,
		}
		if err := profiles.Upsert(ctx, profile); err != nil {
			log.Fatalf("Failed to create profile %s: %v", s.Email, err)
		}
		created++
	}

	log.Printf("Seed complete: %d identities created", created)
}
