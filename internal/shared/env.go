package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override values from config.toml.
const (
	EnvDatabaseDriver = "EMS_DATABASE_DRIVER"
	EnvDatabasePath   = "EMS_DATABASE_PATH"
	EnvDatabaseURL    = "EMS_DATABASE_URL"
	EnvServerHost     = "EMS_SERVER_HOST"
	EnvServerPort     = "EMS_SERVER_PORT"
	EnvLogLevel       = "EMS_LOG_LEVEL"
	EnvSFTPHost       = "EMS_SFTP_HOST"
	EnvSFTPUser       = "EMS_SFTP_USER"
	EnvSFTPPassword   = "EMS_SFTP_PASSWORD"
)

// ApplyEnv loads envFile (when it exists) into the process environment with [godotenv.Load]
// and copies any EMS_* overrides onto config.
//
// Variables already set in the environment win over the file, matching godotenv semantics.
func ApplyEnv(config *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	setString(&config.Database.Driver, EnvDatabaseDriver)
	setString(&config.Database.Path, EnvDatabasePath)
	setString(&config.Database.URL, EnvDatabaseURL)
	setString(&config.Server.Host, EnvServerHost)
	setString(&config.Log.Level, EnvLogLevel)
	setString(&config.Export.SFTP.Host, EnvSFTPHost)
	setString(&config.Export.SFTP.User, EnvSFTPUser)
	setString(&config.Export.SFTP.Password, EnvSFTPPassword)

	if v := os.Getenv(EnvServerPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvServerPort, v)
		}
		config.Server.Port = port
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
