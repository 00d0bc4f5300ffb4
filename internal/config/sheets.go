package config

import (
	"os"

	"github.com/spendsheet/spendsheet/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads the spreadsheet service configuration.
// Precedence:
//  1. Viper configuration (from config file or SPEND_ env vars)
//  2. Direct environment variables (the deployment names the service has
//     always used: GOOGLE_SERVICE_ACCOUNT_JSON_KEY, GOOGLE_APPLICATION_CREDENTIALS)
//  3. Default values
func LoadSheetsConfig() sheets.Config {
	cfg := sheets.DefaultConfig()

	if v := viper.GetString("sheets.service_account_json"); v != "" {
		cfg.ServiceAccountJSON = v
	}
	if v := viper.GetString("sheets.service_account_path"); v != "" {
		cfg.ServiceAccountPath = ExpandPath(v)
	}
	if v := viper.GetDuration("sheets.request_timeout"); v > 0 {
		cfg.RequestTimeout = v
	}

	if cfg.ServiceAccountJSON == "" {
		cfg.ServiceAccountJSON = os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON_KEY")
	}
	if cfg.ServiceAccountPath == "" {
		cfg.ServiceAccountPath = ExpandPath(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	return cfg
}

// DatabasePath returns the SQLite cache location.
func DatabasePath() string {
	if v := viper.GetString("database.path"); v != "" {
		return ExpandPath(v)
	}
	if v := os.Getenv("SPEND_DATABASE_PATH"); v != "" {
		return ExpandPath(v)
	}
	return "expenses.db"
}

// UserMappingPath returns the location of the user→sheet-id side file.
func UserMappingPath() string {
	if v := viper.GetString("usermap.path"); v != "" {
		return ExpandPath(v)
	}
	return "user_sheets_mapping.json"
}
