package main

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tradie-match-server/apperror"
	"tradie-match-server/cache"
	"tradie-match-server/database"
	"tradie-match-server/logger"
	"tradie-match-server/models"
	"tradie-match-server/utils"
)

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Initialize(c.cfg.Database, c.cfg.Server.GinMode, c.log)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()
			return database.Migrate(cmd.Context(), db, c.log)
		},
	}
}

func (c *cli) seedCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo tradies and admirers for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := database.Initialize(c.cfg.Database, c.cfg.Server.GinMode, c.log)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()
			if err := database.Migrate(ctx, db, c.log); err != nil {
				return err
			}
			if err := seedProfiles(ctx, database.NewAccountStore(db), password, c.log); err != nil {
				return err
			}

			redis := cache.NewRedis(ctx, c.cfg.Redis, c.log)
			defer redis.Close()
			return redis.DeleteByPattern(ctx, "discovery:*")
		},
	}
	cmd.Flags().StringVar(&password, "password", "Tradie-Demo-2024", "password for every seeded account")
	return cmd
}

type seedProfile struct {
	email      string
	role       models.Role
	name       string
	age        int
	location   string
	lat, lng   float64
	trade      string
	hourlyRate float64
	bio        string
}

var demoProfiles = []seedProfile{
	{email: "jack.electric@example.com", role: models.RoleTradie, name: "Jack", age: 29, location: "Surry Hills, NSW", lat: -33.8886, lng: 151.2094, trade: "Electrician", hourlyRate: 95, bio: "Licensed sparky, switchboards and smart homes."},
	{email: "mia.plumbing@example.com", role: models.RoleTradie, name: "Mia", age: 31, location: "Newtown, NSW", lat: -33.8980, lng: 151.1790, trade: "Plumber", hourlyRate: 90, bio: "Blocked drains and hot water, same day."},
	{email: "tom.carpentry@example.com", role: models.RoleTradie, name: "Tom", age: 35, location: "Bondi, NSW", lat: -33.8915, lng: 151.2767, trade: "Carpenter", hourlyRate: 85, bio: "Decks, pergolas and custom shelving."},
	{email: "zoe.landscapes@example.com", role: models.RoleTradie, name: "Zoe", age: 27, location: "Manly, NSW", lat: -33.7969, lng: 151.2840, trade: "Landscaper", hourlyRate: 70, bio: "Native gardens that look after themselves."},
	{email: "sophie@example.com", role: models.RoleAdmirer, name: "Sophie", age: 28, location: "Paddington, NSW", lat: -33.8847, lng: 151.2265},
	{email: "liam@example.com", role: models.RoleAdmirer, name: "Liam", age: 33, location: "Glebe, NSW", lat: -33.8798, lng: 151.1857},
}

func seedProfiles(ctx context.Context, accounts *database.AccountStore, password string, log logger.Logger) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now()

	for _, p := range demoProfiles {
		if _, err := accounts.FindByEmail(ctx, p.email); err == nil {
			log.Debug("⏭️ Profile already exists", zap.String("email", p.email))
			continue
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return err
		}

		id := uuid.NewString()
		lat, lng := p.lat, p.lng
		account := &models.Account{
			ID:              id,
			Email:           p.email,
			PasswordHash:    hash,
			EmailVerified:   true,
			Over18Confirmed: true,
			TermsAcceptedAt: &now,
		}
		profile := &models.Profile{
			ID:                id,
			Role:              p.role,
			Name:              p.name,
			Age:               p.age,
			Location:          p.location,
			Latitude:          &lat,
			Longitude:         &lng,
			LocationUpdatedAt: &now,
			Trade:             p.trade,
			HourlyRate:        p.hourlyRate,
			Bio:               p.bio,
			Rating:            models.DefaultRating,
		}
		if err := accounts.CreateWithProfile(ctx, account, profile); err != nil {
			return err
		}
		log.Info("✅ Seeded profile", zap.String("email", p.email), zap.String("role", string(p.role)))
	}
	return nil
}
