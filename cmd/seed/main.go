package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"trading-journal-api/internal/config"
	"trading-journal-api/internal/domain/model"
	"trading-journal-api/internal/domain/ports/repository"
	pg "trading-journal-api/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	inviteRepo := pg.NewInviteCodeRepo(pool)

	// If codes already exist, do nothing
	codes, err := inviteRepo.ListAll(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list invite codes: %v", err)
	}
	if len(codes) > 0 {
		fmt.Printf("%d invite codes already present. No changes.\n", len(codes))
		for _, c := range codes {
			fmt.Printf("  - %s (tier=%s, active=%t, uses=%d)\n", c.Code, c.Tier, c.IsActive, c.CurrentUses)
		}
		return
	}

	one := 1
	ten := 10
	seed := []struct {
		Code        string
		Tier        model.Tier
		Description string
		MaxUses     *int
	}{
		{"PRO-LAUNCH-2026", model.TierPro, "launch batch", &ten},
		{"MAX-FRIENDS-01", model.TierMax, "friends and family", &ten},
		{"MAX-DEMO-SINGLE", model.TierMax, "single-use demo", &one},
	}

	for _, s := range seed {
		ic, err := model.NewInviteCode(s.Code, s.Tier, s.Description, s.MaxUses, nil, "")
		if err != nil {
			log.Fatalf("build code %q: %v", s.Code, err)
		}
		if err := inviteRepo.Save(ctx, repository.NoTX, ic); err != nil {
			log.Fatalf("save code %q: %v", s.Code, err)
		}
		fmt.Printf("seeded: %s (id=%s, tier=%s)\n", ic.Code, ic.ID, ic.Tier)
	}

	fmt.Println("✅ Seeding complete.")
}
