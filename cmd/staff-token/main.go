package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	pkgauth "github.com/angelmondragon/threadline-backend/pkg/auth"
	"github.com/angelmondragon/threadline-backend/pkg/config"
	"github.com/angelmondragon/threadline-backend/pkg/enums"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
)

// staff-token mints a bearer token for the admin API.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "staff-token"})

	_ = godotenv.Load()

	subject := flag.String("sub", "", "operator identity recorded on order events")
	role := flag.String("role", string(enums.StaffRoleFulfillment), "staff role: admin|fulfillment")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	staffRole, err := enums.ParseStaffRole(*role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -role: %v\n", err)
		os.Exit(1)
	}

	token, err := pkgauth.MintStaffToken(cfg.JWT, time.Now(), pkgauth.StaffTokenPayload{
		Subject: *subject,
		Role:    staffRole,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint token: %v\n", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{"sub": *subject, "role": string(staffRole)}), "staff token minted")
	fmt.Println(token)
}
