package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/linesmerrill/casedesk-api/models"
)

// DefaultSweepSchedule runs the orphan sweep daily at 4 AM UTC
const DefaultSweepSchedule = "0 4 * * *"

// Config holds the project config values
type Config struct {
	URL           string     `yaml:"db_uri"`
	DatabaseName  string     `yaml:"db_name"`
	BaseURL       string     `yaml:"base_url"`
	Port          string     `yaml:"port"`
	Env           string     `yaml:"env"`
	SweepSchedule string     `yaml:"sweep_schedule"`
	Cloudinary    Cloudinary `yaml:"cloudinary"`
}

// Cloudinary holds the credentials used to sign document uploads
type Cloudinary struct {
	CloudName    string `yaml:"cloud_name"`
	APIKey       string `yaml:"api_key"`
	APISecret    string `yaml:"api_secret"`
	UploadPreset string `yaml:"upload_preset"`
}

// Enabled reports whether uploads can be signed
func (c Cloudinary) Enabled() bool {
	return c.APISecret != "" && c.APIKey != ""
}

// New sets up all config related services. Values come from the optional
// YAML file named by CONFIG_FILE and are then overridden by the environment.
func New() (*Config, error) {
	conf := &Config{
		Port:          "8080",
		Env:           "local",
		SweepSchedule: DefaultSweepSchedule,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := conf.loadFile(path); err != nil {
			return nil, err
		}
	}
	conf.loadEnv()

	//setup zap logger and replace default logger
	logger, err := setLogger(conf.Env)
	if err != nil {
		return nil, err
	}
	_ = zap.ReplaceGlobals(logger)

	if conf.URL == "" || conf.DatabaseName == "" {
		return nil, errors.New("DB_URI and DB_NAME must be set")
	}
	return conf, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() {
	setFromEnv(&c.URL, "DB_URI")
	setFromEnv(&c.DatabaseName, "DB_NAME")
	setFromEnv(&c.BaseURL, "BASE_URL")
	setFromEnv(&c.Port, "PORT")
	setFromEnv(&c.Env, "ENV")
	setFromEnv(&c.SweepSchedule, "SWEEP_SCHEDULE")
	setFromEnv(&c.Cloudinary.CloudName, "CLOUDINARY_CLOUD_NAME")
	setFromEnv(&c.Cloudinary.APIKey, "CLOUDINARY_API_KEY")
	setFromEnv(&c.Cloudinary.APISecret, "CLOUDINARY_API_SECRET")
	setFromEnv(&c.Cloudinary.UploadPreset, "CLOUDINARY_UPLOAD_PRESET")
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	if httpStatusCode >= http.StatusInternalServerError {
		zap.S().Errorw(message, "status", httpStatusCode, "error", err)
	} else {
		zap.S().Infow(message, "status", httpStatusCode, "error", err)
	}

	errText := ""
	if err != nil {
		errText = err.Error()
	}
	b, _ := json.Marshal(models.ErrorMessageResponse{
		Response: models.MessageError{Message: message, Error: errText},
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	_, _ = w.Write(b)
}
