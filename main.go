package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := loadConfig()

	db := openDB(cfg)
	if cfg.AutoMigrate {
		autoMigrate(db)
	}
	store := newGormStore(db)
	seedDB(store)
	ensureUploadDir(cfg.UploadDir)

	// Lightweight migrate command: `./znappystore migrate` runs AutoMigrate
	// and seeding then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		fmt.Println("migration and seeding completed")
		return
	}

	srv := newServer(cfg, store, store)
	srv.scanOrphans()

	r := gin.Default()
	srv.setupRoutes(r)

	log.Printf("listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
