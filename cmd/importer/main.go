package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/importer"
	productrepo "storefront/internal/repository/product"
	userrepo "storefront/internal/repository/user"
)

func main() {
	var (
		filePath string
		username string
	)
	flag.StringVar(&filePath, "file", "", "Path to product CSV file")
	flag.StringVar(&username, "seller", "", "Username of the seller that will own the products")
	flag.Parse()

	if filePath == "" || username == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	seller, err := userrepo.NewPostgres(pool, logger).GetByUsername(ctx, username)
	if err != nil {
		logger.Fatalf("lookup seller %q: %v", username, err)
	}
	if seller.Role != domain.RoleSeller {
		logger.Fatalf("user %q is not a seller", username)
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, productrepo.NewPostgres(pool, logger), seller.ID)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d products: %v", count, err)
	}

	fmt.Printf("Imported %d products for seller %s in %s\n", count, username, time.Since(start).Truncate(time.Millisecond))
}
