// Command rotate-vault-key re-seals stored Google refresh tokens under a
// new TOKEN_VAULT_KEY. Run it after generating the new key, with the old
// key still available as TOKEN_VAULT_KEY_PREVIOUS.
package main

import (
	"encoding/hex"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"gbp-agency-api/config"
	"gbp-agency-api/models"
	"gbp-agency-api/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var dryRun bool
	flag.BoolVar(&dryRun, "dry-run", false, "report what would be re-sealed without writing")
	flag.Parse()

	newVault, err := services.NewTokenVault()
	if err != nil {
		log.Fatalf("new vault key: %v", err)
	}

	previousRaw := os.Getenv("TOKEN_VAULT_KEY_PREVIOUS")
	if previousRaw == "" {
		log.Fatal("TOKEN_VAULT_KEY_PREVIOUS is not set")
	}
	previousKey, err := hex.DecodeString(previousRaw)
	if err != nil {
		log.Fatal("TOKEN_VAULT_KEY_PREVIOUS must be 64 hex characters")
	}
	oldVault, err := services.NewTokenVaultWithKey(previousKey)
	if err != nil {
		log.Fatalf("previous vault key: %v", err)
	}

	config.InitDB()

	var connections []models.GoogleConnection
	if err := config.DB.Find(&connections).Error; err != nil {
		log.Fatal("Failed to fetch google connections:", err)
	}

	var rotated, skipped, failed int
	for _, conn := range connections {
		// Rows sealed under the new key already open with it.
		if _, err := newVault.Open(conn.RefreshToken); err == nil {
			log.Printf("Connection %d (agency %d) already uses the new key, skipping", conn.ID, conn.AgencyID)
			skipped++
			continue
		}

		plain, err := oldVault.Open(conn.RefreshToken)
		if err != nil {
			log.Printf("Connection %d (agency %d) opens with neither key: %v", conn.ID, conn.AgencyID, err)
			failed++
			continue
		}

		if dryRun {
			log.Printf("Connection %d (agency %d) would be re-sealed", conn.ID, conn.AgencyID)
			rotated++
			continue
		}

		sealed, err := newVault.Seal(plain)
		if err != nil {
			log.Printf("Failed to seal token for connection %d: %v", conn.ID, err)
			failed++
			continue
		}

		if err := config.DB.Model(&conn).Update("refresh_token", sealed).Error; err != nil {
			log.Printf("Failed to update connection %d: %v", conn.ID, err)
			failed++
			continue
		}

		log.Printf("Re-sealed token for connection %d (agency %d)", conn.ID, conn.AgencyID)
		rotated++
	}

	log.Printf("Key rotation completed: %d re-sealed, %d skipped, %d failed", rotated, skipped, failed)
	if failed > 0 {
		os.Exit(2)
	}
}
