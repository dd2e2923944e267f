package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/lotty-marketplace/internal/model"
	"github.com/iliyamo/lotty-marketplace/internal/repository"
)

// seedDemo fills an empty database with an admin, a subscribed seller and
// one published listing.  It does nothing once any user exists.
func seedDemo(ctx context.Context, users *repository.UserRepo, subs *repository.SubscriptionRepo, listings *repository.ListingRepo, cost int) error {
	n, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if _, err := users.Create(ctx, repository.NewUser{
		Username: "admin@lotty.py",
		Password: "admin123",
		FullName: "Administrador",
		Phone:    "0981000000",
		Role:     model.RoleAdmin,
	}, cost); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	seller, err := users.Create(ctx, repository.NewUser{
		Username: "user@lotty.py",
		Password: "user123",
		FullName: "Juan Perez",
		Phone:    "0971111111",
		Role:     model.RoleUser,
	}, cost)
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	start := time.Now().UTC().Truncate(time.Second)
	if err := subs.Assign(ctx, &model.Subscription{
		UserID:      seller.ID,
		PlanType:    "monthly",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 30),
		MaxListings: model.UnlimitedListings,
	}); err != nil {
		return fmt.Errorf("seed subscription: %w", err)
	}

	link := "https://maps.google.com/?q=-27.3306,-55.8667"
	slug := "terreno-en-encarnacion-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	l := &model.Listing{
		UserID:           seller.ID,
		Title:            "Terreno en Encarnación",
		Description:      "Lote con vista al río, a cinco minutos de la costanera.",
		Currency:         model.CurrencyUSD,
		Price:            50000,
		Department:       "Itapúa",
		City:             "Encarnación",
		Zone:             "Costanera",
		GoogleMapsLink:   &link,
		LandSize:         450,
		Dimensions:       "15x30",
		OwnerName:        "Juan Perez",
		OwnerType:        "owner",
		TitleStatus:      "has_title",
		Phone:            "0971111111",
		PaymentCondition: "cash_only",
		Status:           model.ListingActive,
		Featured:         true,
		Slug:             &slug,
	}
	if err := listings.Create(ctx, l); err != nil {
		return fmt.Errorf("seed listing: %w", err)
	}
	log.Printf("seed: demo data inserted (admin@lotty.py, user@lotty.py)")
	return nil
}
