package internal

import (
	"context"

	"github.com/naasdev/naas/internal/config"
	"github.com/naasdev/naas/internal/domain/publication"
	ierr "github.com/naasdev/naas/internal/errors"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/postgres"
	"github.com/naasdev/naas/internal/repository"
	"github.com/naasdev/naas/internal/types"
	"github.com/shopspring/decimal"
)

type catalogEntry struct {
	name        string
	description string
	pubType     types.PublicationType
	frequency   types.PublicationFrequency
	price       string
}

var defaultCatalog = []catalogEntry{
	{"The Morning Herald", "Daily broadsheet with city and national news", types.PublicationTypeNewspaper, types.PublicationFrequencyDaily, "310.00"},
	{"Evening Chronicle", "Afternoon daily with local editions", types.PublicationTypeNewspaper, types.PublicationFrequencyDaily, "240.00"},
	{"Weekend Review", "Long reads and culture every Sunday", types.PublicationTypeNewspaper, types.PublicationFrequencyWeekly, "60.00"},
	{"Market Fortnightly", "Business and markets digest", types.PublicationTypeMagazine, types.PublicationFrequencyBiweekly, "90.00"},
	{"Science Monthly", "Popular science magazine", types.PublicationTypeMagazine, types.PublicationFrequencyMonthly, "150.00"},
}

// SeedCatalog creates the default publications. Entries that already exist are skipped.
func SeedCatalog() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return err
	}

	db, err := postgres.NewDB(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := types.NewSystemContext(context.Background())
	repo := repository.NewPublicationRepository(db, log)

	created := 0
	for _, entry := range defaultCatalog {
		p := &publication.Publication{
			ID:          types.GenerateUUID(),
			Name:        entry.name,
			Description: entry.description,
			Type:        entry.pubType,
			Frequency:   entry.frequency,
			Price:       decimal.RequireFromString(entry.price),
			IsActive:    true,
			BaseModel:   types.GetDefaultBaseModel(ctx),
		}

		if err := repo.Create(ctx, p); err != nil {
			if ierr.IsAlreadyExists(err) {
				log.Infow("publication already exists, skipping", "name", entry.name)
				continue
			}
			return err
		}
		created++
		log.Infow("created publication", "id", p.ID, "name", p.Name, "price", p.Price.StringFixed(2))
	}

	log.Infow("catalog seeded", "created", created, "total", len(defaultCatalog))
	return nil
}
