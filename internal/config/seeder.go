package config

import (
	"log"

	"guarantee-tracker/internal/adapters/persistence/models"
	"guarantee-tracker/internal/core/domain"
	"guarantee-tracker/internal/pkg/password"

	"gorm.io/gorm"
)

// devAdminPassword is used for the bootstrap admin in dev mode when ADMIN_PASSWORD is unset
const devAdminPassword = "admin123456"

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		return err
	}

	if err := s.seedBankLimits(); err != nil {
		log.Printf("⚠️ Bank limit seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser guarantees at least one admin exists
func (s *Seeder) seedAdminUser() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	plain := s.cfg.Admin.Password
	if plain == "" {
		if s.cfg.IsProd() {
			log.Println("⚠️ Skipping admin seed: ADMIN_PASSWORD is not set")
			return nil
		}
		log.Printf("⚠️ ADMIN_PASSWORD is not set, using the development default for '%s'", s.cfg.Admin.Username)
		plain = devAdminPassword
	}

	hashed, err := password.Hash(plain)
	if err != nil {
		return err
	}

	var existing models.User
	err = s.db.Where("username = ?", s.cfg.Admin.Username).Limit(1).Find(&existing).Error
	if err != nil {
		return err
	}

	// promote a synced user with the admin username instead of colliding with it
	if existing.ID != 0 {
		existing.Role = string(domain.RoleAdmin)
		existing.Active = true
		existing.IsApproved = true
		existing.PasswordHash = hashed
		if err := s.db.Save(&existing).Error; err != nil {
			return err
		}
		log.Printf("✅ Existing user promoted to admin: %s", existing.Username)
		return nil
	}

	admin := &models.User{
		Username:     s.cfg.Admin.Username,
		PasswordHash: hashed,
		Role:         string(domain.RoleAdmin),
		Active:       true,
		IsApproved:   true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedBankLimits registers the canonical banks with a zero limit on a fresh store
func (s *Seeder) seedBankLimits() error {
	var count int64
	if err := s.db.Model(&models.BankLimit{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	banks := []string{
		domain.BankNBK,
		domain.BankNBKAirport,
		domain.BankKFH,
		domain.BankGulf,
		domain.BankBurgan,
	}
	limits := make([]models.BankLimit, 0, len(banks))
	for _, name := range banks {
		limits = append(limits, models.BankLimit{BankName: name})
	}

	if err := s.db.Create(&limits).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d bank limits", len(limits))
	return nil
}
