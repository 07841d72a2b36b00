package main

import (
	"context"
	"flag"
	"log"
	"os"

	"agent-chat-be/internal/model"
	"agent-chat-be/internal/repository/memory"
	"agent-chat-be/internal/repository/unitofwork"
	"agent-chat-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	agentsFile := flag.String("agents", "agents.yaml", "agent catalogue to seed (empty skips seeding)")
	flag.Parse()

	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. AutoMigrate
	log.Println("Step 1: Running AutoMigrate...")
	models := []interface{}{
		&model.Agent{},
		&model.Message{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 4. Seed Agents
	if *agentsFile == "" {
		log.Println("Migration complete (seeding skipped)")
		return
	}

	log.Printf("Step 2: Seeding agents from %s...", *agentsFile)
	agents, err := memory.LoadAgents(*agentsFile)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if err := unitofwork.SeedAgents(context.Background(), unitofwork.NewUnitOfWork(db), agents); err != nil {
		log.Fatalf("Error: %v", err)
	}
	for _, agent := range agents {
		log.Printf("  seeded %s (%s)", agent.Key, agent.ShortName)
	}

	log.Println("Migration complete")
}
