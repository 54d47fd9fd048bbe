package app

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"firebasebindings/internal/binding"

	"google.golang.org/api/option"
)

// FirebaseOptions configures one Firebase app.
type FirebaseOptions struct {
	APIKey            string `yaml:"api_key" json:"apiKey,omitempty"`
	AuthDomain        string `yaml:"auth_domain" json:"authDomain,omitempty"`
	DatabaseURL       string `yaml:"database_url" json:"databaseURL,omitempty"`
	ProjectID         string `yaml:"project_id" json:"projectId,omitempty"`
	StorageBucket     string `yaml:"storage_bucket" json:"storageBucket,omitempty"`
	MessagingSenderID string `yaml:"messaging_sender_id" json:"messagingSenderId,omitempty"`
	AppID             string `yaml:"app_id" json:"appId,omitempty"`
	MeasurementID     string `yaml:"measurement_id" json:"measurementId,omitempty"`

	// Service account credentials. Base64 JSON wins over a file path; with
	// neither, application default credentials are used.
	CredentialsPath   string `yaml:"credentials_path" json:"-"`
	CredentialsBase64 string `yaml:"credentials_base64" json:"-"`
}

// OptionsFromLoader reads "firebase.*" keys. A missing project id is taken
// from base64 credentials when possible.
func OptionsFromLoader(loader binding.ConfigLoader) FirebaseOptions {
	opts := FirebaseOptions{
		APIKey:            loader.GetWithDefault("firebase.api_key", ""),
		AuthDomain:        loader.GetWithDefault("firebase.auth_domain", ""),
		DatabaseURL:       loader.GetWithDefault("firebase.database_url", ""),
		ProjectID:         loader.GetWithDefault("firebase.project_id", ""),
		StorageBucket:     loader.GetWithDefault("firebase.storage_bucket", ""),
		MessagingSenderID: loader.GetWithDefault("firebase.messaging_sender_id", ""),
		AppID:             loader.GetWithDefault("firebase.app_id", ""),
		MeasurementID:     loader.GetWithDefault("firebase.measurement_id", ""),
		CredentialsPath:   loader.GetWithDefault("firebase.credentials_path", ""),
		CredentialsBase64: loader.GetWithDefault("firebase.credentials_base64", ""),
	}

	if opts.ProjectID == "" && opts.CredentialsBase64 != "" {
		if projectID, err := projectIDFromCredentials(opts.CredentialsBase64); err == nil {
			opts.ProjectID = projectID
		}
	}
	return opts
}

// Validate requires a project id, either set directly or carried by the
// base64 credentials.
func (o FirebaseOptions) Validate() error {
	if o.ProjectID != "" {
		return nil
	}
	if o.CredentialsBase64 != "" {
		if _, err := projectIDFromCredentials(o.CredentialsBase64); err != nil {
			return fmt.Errorf("%w: %w", binding.ErrMissingProjectID, err)
		}
		return nil
	}
	return binding.ErrMissingProjectID
}

// ToJSON returns the web config object without empty values.
func (o FirebaseOptions) ToJSON() map[string]any {
	return binding.JSONWithoutNulls(
		binding.F("apiKey", binding.Optional(o.APIKey)),
		binding.F("authDomain", binding.Optional(o.AuthDomain)),
		binding.F("databaseURL", binding.Optional(o.DatabaseURL)),
		binding.F("projectId", binding.Optional(o.ProjectID)),
		binding.F("storageBucket", binding.Optional(o.StorageBucket)),
		binding.F("messagingSenderId", binding.Optional(o.MessagingSenderID)),
		binding.F("appId", binding.Optional(o.AppID)),
		binding.F("measurementId", binding.Optional(o.MeasurementID)),
	)
}

func (o FirebaseOptions) resolvedProjectID() string {
	if o.ProjectID != "" {
		return o.ProjectID
	}
	projectID, _ := projectIDFromCredentials(o.CredentialsBase64)
	return projectID
}

func (o FirebaseOptions) clientOptions() ([]option.ClientOption, error) {
	switch {
	case o.CredentialsBase64 != "":
		credentialsJSON, err := base64.StdEncoding.DecodeString(o.CredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to decode Firebase credentials: %w", binding.ErrConfigurationError, err)
		}
		return []option.ClientOption{option.WithCredentialsJSON(credentialsJSON)}, nil
	case o.CredentialsPath != "":
		return []option.ClientOption{option.WithCredentialsFile(o.CredentialsPath)}, nil
	default:
		// GOOGLE_APPLICATION_CREDENTIALS or the metadata server.
		return nil, nil
	}
}

func projectIDFromCredentials(credentialsBase64 string) (string, error) {
	credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return "", fmt.Errorf("failed to decode Firebase credentials: %w", err)
	}

	var credentials struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(credentialsJSON, &credentials); err != nil {
		return "", fmt.Errorf("failed to parse Firebase credentials JSON: %w", err)
	}
	if credentials.ProjectID == "" {
		return "", errors.New("project_id not found in Firebase credentials")
	}
	return credentials.ProjectID, nil
}
