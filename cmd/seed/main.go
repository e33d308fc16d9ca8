package main

import (
	"context"
	"log"
	"os"

	"shopbuilder/internal/config"
	"shopbuilder/internal/db"
	"shopbuilder/internal/seed"
	settingssvc "shopbuilder/internal/service/settings"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	defaults := settingssvc.Defaults{
		CODFeeCents:           cfg.CODFeeCents,
		FreeShippingFromCents: cfg.FreeShippingThresholdCents,
	}
	if err := seed.Apply(ctx, pool, defaults); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}
