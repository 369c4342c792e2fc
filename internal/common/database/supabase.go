package database

import (
	"fmt"

	"telugu-assistant/internal/common/config"

	"github.com/supabase-community/supabase-go"
)

// NewSupabase creates a PostgREST-backed client for the hosted database.
func NewSupabase(cfg config.SupabaseConfig) (*supabase.Client, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	client, err := supabase.NewClient(cfg.URL, cfg.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return client, nil
}
