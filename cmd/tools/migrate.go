package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/baxromumarov/gig-crawler/internal/store"
)

func main() {
	dbURL := flag.String("db", os.Getenv("GIG_DATABASE_URL"), "Database URL")
	printOnly := flag.Bool("print", false, "Print the schema instead of applying it")
	flag.Parse()

	if *printOnly {
		fmt.Print(store.Schema)
		return
	}
	if *dbURL == "" {
		log.Fatal("Database URL is required (-db or GIG_DATABASE_URL)")
	}

	db, err := store.NewStore(*dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(context.Background()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations executed successfully")
}
