package main

import (
	"os"

	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/domain/sqlite"
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/domain/sqlite/repository"
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/gamification"
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/routes"
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/service"
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/utils/validators"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func main() {
	validate := validator.New()
	registerValidators(validate)

	err := godotenv.Load()
	if err != nil {
		log.Warnf("no .env file loaded: %v", err)
	}

	// Init SQLite
	db, err := sqlite.Init(envOr("DB_PATH", "./database.db"))
	if err != nil {
		log.Fatal("failed to initialize database", err)
	}

	// Getting repositories
	donorRepo := repository.NewDonorRepository(db)
	bankRepo := repository.NewBloodBankRepository(db)
	donationRepo := repository.NewDonationRepository(db)

	// Gamification collaborators for completed donations
	achievements := gamification.NewEvaluator(donorRepo)
	notifier := gamification.LogNotifier{}

	// Getting services
	donationService := service.NewDonationService(donationRepo, donorRepo, bankRepo, achievements, notifier, validate)
	availabilityService := service.NewAvailabilityService(bankRepo, donationRepo, validate)

	// Getting routes
	donationRoutes := routes.NewDonationDefault(donationService)
	availabilityRoutes := routes.NewAvailabilityDefault(availabilityService)

	e := echo.New()
	e.Use(middleware.CORS())

	// Donations
	e.POST("/api/donations", donationRoutes.CreateDonation)
	e.GET("/api/donations/check-availability", availabilityRoutes.CheckAvailability)
	e.GET("/api/donations/user/:userId", donationRoutes.GetUserDonations)
	e.GET("/api/donations/blood-bank/:bloodBankId", donationRoutes.GetBloodBankDonations)
	e.GET("/api/donations/blood-bank/:bloodBankId/upcoming", donationRoutes.GetUpcomingDonations)
	e.GET("/api/donations/blood-bank/:bloodBankId/stats", donationRoutes.GetStats)
	e.GET("/api/donations/:id", donationRoutes.GetDonation)
	e.PATCH("/api/donations/:id/cancel", donationRoutes.CancelDonation)
	e.PATCH("/api/donations/:id/confirm", donationRoutes.ConfirmDonation)
	e.PATCH("/api/donations/:id/complete", donationRoutes.CompleteDonation)

	// Blood bank availability
	e.POST("/api/blood-banks/availability", availabilityRoutes.PublishAvailability)
	e.GET("/api/blood-banks/:id/availability", availabilityRoutes.GetAvailability)
	e.GET("/api/blood-banks/:id/available-slots", availabilityRoutes.GetAvailableSlots)

	err = e.Start(envOr("LISTEN_ADDR", ":8080"))
	if err != nil {
		e.Logger.Fatal(err)
	}
}

func registerValidators(validate *validator.Validate) {
	_ = validate.RegisterValidation("iso8601", validators.IsIso8601)
	_ = validate.RegisterValidation("hourminute", validators.IsHourMinute)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
