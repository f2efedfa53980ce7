package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"examination_app_go/config"
	"examination_app_go/db"
	"examination_app_go/services"
)

func main() {
	from := flag.String("from", "", "source storage backend (memory, file, gorm, sqlite, postgres, libsql, redis)")
	to := flag.String("to", "", "destination storage backend")
	force := flag.Bool("force", false, "overwrite collections already present in the destination")
	flag.Parse()

	if *from == "" || *to == "" {
		log.Fatal("Both -from and -to are required")
	}
	if *from == *to {
		log.Fatal("Source and destination must differ")
	}

	// Load configuration; connection settings for both backends come from the environment
	cfg := config.Load()
	defer db.Close()

	source, err := services.NewKeyValueStoreFor(*from, cfg)
	if err != nil {
		log.Fatalf("Failed to open source: %v", err)
	}
	defer source.Close()

	destination, err := services.NewKeyValueStoreFor(*to, cfg)
	if err != nil {
		log.Fatalf("Failed to open destination: %v", err)
	}
	defer destination.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log.Printf("Copying collections from %s to %s...", source.Name(), destination.Name())
	written, err := services.CopyCollections(ctx, source, destination, *force)
	if errors.Is(err, services.ErrDestinationNotEmpty) {
		log.Fatalf("%v (use -force to overwrite)", err)
	}
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	for i, key := range written {
		log.Printf("[%d/%d] Copied %s", i+1, len(written), key)
	}
	log.Println("Migration completed successfully!")
}
