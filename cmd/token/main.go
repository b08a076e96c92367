// Command token prints a staff bearer token signed with the configured
// JWT secret.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nileops/remit-console/internal/api/middleware"
	"github.com/nileops/remit-console/internal/config"
	flag "github.com/spf13/pflag"
)

func main() {
	staff := flag.StringP("staff", "s", "", "staff id (uuid); random when empty")
	role := flag.StringP("role", "r", middleware.RoleAdmin, "role claim")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	if err := run(*staff, *role, *ttl); err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
}

func run(staff, role string, ttl time.Duration) error {
	cfg, err := config.LoadJWT()
	if err != nil {
		return err
	}

	staffID := uuid.New()
	if staff != "" {
		if staffID, err = uuid.Parse(staff); err != nil {
			return fmt.Errorf("invalid staff id: %w", err)
		}
	}

	auth, err := middleware.NewAuth(cfg.Secret, cfg.Issuer, cfg.Audience)
	if err != nil {
		return err
	}
	token, err := auth.Issue(staffID, role, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
