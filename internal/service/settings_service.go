package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	app_errors "qwen-console/internal/errors"
	"qwen-console/internal/model"
)

const (
	keyAPIURL = "api_url"
	keyAPIKey = "api_key"
	keyModel  = "model"
)

// Settings is the default connection new sessions start with. It is stored
// in the settings table, one row per field.
type Settings struct {
	APIURL string `json:"api_url" validate:"required,url"`
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model" validate:"required,max=200"`
}

var (
	settingsValidate *validator.Validate
	settingsOnce     sync.Once
)

// validateSettings checks settings against their struct tags. Failed fields
// are reported under their JSON names.
func validateSettings(settings *Settings) error {
	settingsOnce.Do(func() {
		settingsValidate = validator.New(validator.WithRequiredStructEnabled())
		settingsValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			return name
		})
	})

	err := settingsValidate.Struct(settings)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on the '%s' tag", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", app_errors.ErrValidation, strings.Join(msgs, "; "))
}

// Connection converts the settings into a session connection.
func (s *Settings) Connection() model.Connection {
	return model.Connection{APIURL: s.APIURL, APIKey: s.APIKey, Model: s.Model}
}

type SettingsService struct {
	db *sql.DB
}

func NewSettingsService(db *sql.DB) *SettingsService {
	return &SettingsService{db: db}
}

// InitAndGet loads the stored settings and fills every field that has never
// been stored from defaults, saving the result.
func (s *SettingsService) InitAndGet(ctx context.Context, defaults *Settings) (*Settings, error) {
	values, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	missing := false
	fill := func(key, fallback string) string {
		if v, ok := values[key]; ok {
			return v
		}
		missing = true
		return fallback
	}
	settings := &Settings{
		APIURL: fill(keyAPIURL, defaults.APIURL),
		APIKey: fill(keyAPIKey, defaults.APIKey),
		Model:  fill(keyModel, defaults.Model),
	}

	if missing {
		slog.Info("Initializing settings with defaults", "api_url", settings.APIURL, "model", settings.Model)
		if err := s.save(ctx, settings); err != nil {
			return nil, fmt.Errorf("failed to save initial settings: %w", err)
		}
	}
	return settings, nil
}

// Get returns the stored settings.
func (s *SettingsService) Get(ctx context.Context) (*Settings, error) {
	values, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return &Settings{
		APIURL: values[keyAPIURL],
		APIKey: values[keyAPIKey],
		Model:  values[keyModel],
	}, nil
}

// Save replaces the stored settings.
func (s *SettingsService) Save(ctx context.Context, settings *Settings) error {
	settings.APIURL = strings.TrimSpace(settings.APIURL)
	settings.Model = strings.TrimSpace(settings.Model)
	if err := validateSettings(settings); err != nil {
		return err
	}

	if err := s.save(ctx, settings); err != nil {
		return err
	}
	slog.Info("Settings updated", "api_url", settings.APIURL, "model", settings.Model, "api_key_set", settings.APIKey != "")
	return nil
}

func (s *SettingsService) load(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return values, nil
}

// save writes all fields in one transaction.
func (s *SettingsService) save(ctx context.Context, settings *Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value")
	if err != nil {
		return fmt.Errorf("could not prepare settings statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, kv := range [][2]string{
		{keyAPIURL, settings.APIURL},
		{keyAPIKey, settings.APIKey},
		{keyModel, settings.Model},
	} {
		if _, err := stmt.ExecContext(ctx, kv[0], kv[1]); err != nil {
			return fmt.Errorf("could not save setting %s: %w", kv[0], err)
		}
	}

	return tx.Commit()
}

// StaticSettings serves fixed settings, for callers without a database.
type StaticSettings Settings

func (s StaticSettings) Get(ctx context.Context) (*Settings, error) {
	settings := Settings(s)
	return &settings, nil
}
