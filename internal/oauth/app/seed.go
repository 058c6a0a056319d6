package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sableauth/sable/internal/oauth/domain"
	"github.com/sableauth/sable/internal/oauth/store"
	"github.com/sableauth/sable/pkg/cryptox"
	"github.com/sableauth/sable/pkg/idx"
)

// seedFromEnv registers an initial client and user when the seed variables
// are set. Meant for dev setups and integration tests where there is no
// registration surface to create them through. Existing records win, so a
// restart against the same database is a no-op.
func (app *Application) seedFromEnv(ctx context.Context) error {
	if clientID := os.Getenv("SABLE_SEED_CLIENT_ID"); clientID != "" {
		if err := app.seedClient(ctx, clientID); err != nil {
			return err
		}
	}
	if username := os.Getenv("SABLE_SEED_USERNAME"); username != "" {
		if err := app.seedUser(ctx, username); err != nil {
			return err
		}
	}
	return nil
}

func (app *Application) seedClient(ctx context.Context, clientID string) error {
	clients := app.db.Clients()
	if _, err := clients.GetClientByID(ctx, clientID); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to look up seed client: %w", err)
	}

	grantNames := strings.Fields(getEnvOrDefault(
		"SABLE_SEED_CLIENT_GRANTS",
		"client_credentials password refresh_token",
	))
	grants := make([]domain.GrantType, 0, len(grantNames))
	for _, name := range grantNames {
		g, ok := domain.ParseGrantType(name)
		if !ok {
			return fmt.Errorf("unknown grant type %q in SABLE_SEED_CLIENT_GRANTS", name)
		}
		grants = append(grants, g)
	}

	scopes := strings.Fields(os.Getenv("SABLE_SEED_CLIENT_SCOPES"))
	if len(scopes) == 0 {
		scopes = app.cfg.Scopes
	}

	client := domain.Client{
		ID:           clientID,
		Name:         getEnvOrDefault("SABLE_SEED_CLIENT_NAME", "seed-client"),
		Secret:       os.Getenv("SABLE_SEED_CLIENT_SECRET"),
		RedirectURIs: strings.Fields(os.Getenv("SABLE_SEED_CLIENT_REDIRECT_URIS")),
		GrantTypes:   grants,
		Scopes:       scopes,
	}
	if err := clients.CreateClient(ctx, client); err != nil {
		return fmt.Errorf("failed to create seed client: %w", err)
	}

	app.logger.Info("seed client registered", "client_id", clientID)
	return nil
}

func (app *Application) seedUser(ctx context.Context, username string) error {
	password := os.Getenv("SABLE_SEED_PASSWORD")
	if password == "" {
		return errors.New("SABLE_SEED_USERNAME set without SABLE_SEED_PASSWORD")
	}

	finder, ok := app.db.Users().(store.ResourceOwnerCredentialFinder)
	if ok {
		if _, err := finder.FindByResourceOwnerCredentials(ctx, username, password); err == nil {
			return nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to look up seed user: %w", err)
		}
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash seed user password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
	}
	if err := app.db.Users().CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create seed user: %w", err)
	}

	app.logger.Info("seed user registered", "username", username)
	return nil
}
