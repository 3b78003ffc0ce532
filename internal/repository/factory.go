package repository

import (
	"github.com/naasdev/naas/internal/domain/customer"
	"github.com/naasdev/naas/internal/domain/delivery"
	"github.com/naasdev/naas/internal/domain/invoice"
	"github.com/naasdev/naas/internal/domain/notification"
	"github.com/naasdev/naas/internal/domain/payment"
	"github.com/naasdev/naas/internal/domain/publication"
	"github.com/naasdev/naas/internal/domain/subscription"
	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/postgres"
	postgresRepo "github.com/naasdev/naas/internal/repository/postgres"
)

func NewCustomerRepository(db *postgres.DB, logger *logger.Logger) customer.Repository {
	return postgresRepo.NewCustomerRepository(db, logger)
}

func NewPublicationRepository(db *postgres.DB, logger *logger.Logger) publication.Repository {
	return postgresRepo.NewPublicationRepository(db, logger)
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(db, logger)
}

func NewNotificationRepository(db *postgres.DB, logger *logger.Logger) notification.Repository {
	return postgresRepo.NewNotificationRepository(db, logger)
}

func NewPersonnelRepository(db *postgres.DB, logger *logger.Logger) delivery.PersonnelRepository {
	return postgresRepo.NewPersonnelRepository(db, logger)
}

func NewScheduleRepository(db *postgres.DB, logger *logger.Logger) delivery.ScheduleRepository {
	return postgresRepo.NewScheduleRepository(db, logger)
}
