package main

import (
	"fmt"
	"log"
	"os"

	"github.com/bugtrail/bugtrail/internal/config"
	"github.com/bugtrail/bugtrail/internal/models"
)

// One-off: seed the role catalog into an existing database without starting
// the server. Useful after a manual migration or a restore.
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := models.InitDB(&cfg.Database); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.SeedRoles(models.GetDB()); err != nil {
		log.Fatalf("Failed to seed roles: %v", err)
	}

	var roles []models.Role
	if err := models.GetDB().Order("id ASC").Find(&roles).Error; err != nil {
		log.Fatalf("Failed to list roles: %v", err)
	}

	for _, r := range roles {
		fmt.Printf("role %d: %s (status=%v priority=%v delete_bug=%v delete_members=%v)\n",
			r.ID, r.Name, r.CanUpdateStatus, r.CanUpdatePriority, r.CanDeleteBug, r.CanDeleteMembers)
	}
	fmt.Printf("Done. %d roles present.\n", len(roles))
}
