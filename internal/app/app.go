// Package app initializes Firebase apps and hands out their module clients.
package app

import (
	"context"
	"fmt"

	"firebasebindings/internal/analytics"
	"firebasebindings/internal/auth"
	"firebasebindings/internal/binding"
	"firebasebindings/internal/database"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// DefaultName names the app created when no name is given.
const DefaultName = "[DEFAULT]"

// App is an initialized Firebase app.
type App struct {
	name    string
	options FirebaseOptions
	fb      *firebase.App
	// clientOpts authenticate the clients built outside the admin SDK.
	clientOpts []option.ClientOption
	logger     binding.Logger
	metrics    binding.Metrics
}

// Initialize validates opts and creates an app called name (DefaultName when
// empty). clientOpts are appended after the credential options.
func Initialize(ctx context.Context, opts FirebaseOptions, name string, logger binding.Logger, metrics binding.Metrics, clientOpts ...option.ClientOption) (*App, error) {
	if name == "" {
		name = DefaultName
	}
	if logger == nil {
		logger = binding.NopLogger{}
	}
	if metrics == nil {
		metrics = binding.NopMetrics{}
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("firebase options validation failed: %w", err)
	}

	credOpts, err := opts.clientOptions()
	if err != nil {
		return nil, err
	}

	allOpts := append(credOpts, clientOpts...)
	fb, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     opts.resolvedProjectID(),
		DatabaseURL:   opts.DatabaseURL,
		StorageBucket: opts.StorageBucket,
	}, allOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	a := &App{
		name:       name,
		options:    opts,
		fb:         fb,
		clientOpts: allOpts,
		logger:     logger.With("app", name),
		metrics:    metrics,
	}
	a.logger.Info("firebase app initialized", "project_id", opts.resolvedProjectID())
	return a, nil
}

func (a *App) Name() string {
	return a.name
}

func (a *App) Options() FirebaseOptions {
	return a.options
}

// Auth returns the Auth module. cache and locks may be nil.
func (a *App) Auth(ctx context.Context, cache binding.Cache, locks binding.LockManager) (*auth.Auth, error) {
	client, err := a.fb.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase Auth client: %w", err)
	}
	config := auth.NewConfig(a.options.APIKey, a.options.AuthDomain)
	return auth.New(client, config, cache, locks, a.logger, a.metrics), nil
}

// Database returns the Realtime Database at url, or at the configured
// database URL when url is empty.
func (a *App) Database(ctx context.Context, url string) (*database.Database, error) {
	if url == "" {
		url = a.options.DatabaseURL
	}
	if url == "" {
		return nil, fmt.Errorf("%w: no database URL configured", binding.ErrConfigurationError)
	}

	client, err := a.fb.DatabaseWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize Realtime Database client: %w", binding.ErrConfigurationError, err)
	}
	exporter, err := database.NewExporter(ctx, url, a.clientOpts...)
	if err != nil {
		return nil, err
	}
	return database.New(client, a.logger, a.metrics, database.WithExporter(exporter)), nil
}

// Analytics returns the Analytics module for the configured measurement id.
func (a *App) Analytics(cfg binding.AnalyticsConfig) (*analytics.Analytics, error) {
	if a.options.MeasurementID == "" {
		return nil, fmt.Errorf("%w: analytics needs a measurement id", binding.ErrConfigurationError)
	}
	return analytics.New(a.options.MeasurementID, cfg, a.logger, a.metrics)
}
