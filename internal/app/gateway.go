package app

import (
	"database/sql"
	"fmt"

	"ruangbelajar/internal/identity"
)

// NewGateway picks the identity backend named by AUTH_PROVIDER.
func NewGateway(cfg Config, conn *sql.DB) (identity.Gateway, error) {
	switch cfg.AuthProvider {
	case "", "local":
		return identity.NewLocalGateway(conn, cfg.SessionTTL), nil
	case "supabase":
		gw, err := identity.NewSupabaseGateway(identity.SupabaseConfig{
			URL:        cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseServiceKey,
			JWTSecret:  cfg.SupabaseJWTSecret,
		})
		if err != nil {
			return nil, err
		}
		return gw, nil
	default:
		return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.AuthProvider)
	}
}
