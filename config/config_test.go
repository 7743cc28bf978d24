package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/casedesk-api/models"
)

func TestNew(t *testing.T) {
	t.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	t.Setenv("DB_NAME", "test")
	conf, err := New()

	require.NoError(t, err)
	assert.Equal(t, "mongodb://127.0.0.1:27017", conf.URL)
	assert.Equal(t, "test", conf.DatabaseName)
	assert.Equal(t, "8080", conf.Port)
	assert.Equal(t, DefaultSweepSchedule, conf.SweepSchedule)
}

func TestNewMissingDatabase(t *testing.T) {
	t.Setenv("DB_URI", "")
	t.Setenv("DB_NAME", "")
	_, err := New()
	assert.Error(t, err)
}

func TestNewFileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casedesk.yaml")
	body := []byte(`
db_uri: mongodb://file:27017
db_name: fromfile
port: "9000"
cloudinary:
  cloud_name: demo
  api_key: key
  api_secret: secret
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_URI", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("PORT", "7000")

	conf, err := New()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://file:27017", conf.URL)
	assert.Equal(t, "fromfile", conf.DatabaseName)
	assert.Equal(t, "7000", conf.Port)
	assert.Equal(t, "demo", conf.Cloudinary.CloudName)
	assert.True(t, conf.Cloudinary.Enabled())
}

func TestNewBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_uri: [unterminated"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := New()
	assert.Error(t, err)
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	expected, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: "error it borked", Error: "bad request"}})
	assert.Equal(t, string(expected), rr.Body.String())
}

func TestSetLoggerSetsDevelopmentLogger(t *testing.T) {
	l, err := setLogger("development")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(1))
}

func TestSetLoggerSetsProductionLogger(t *testing.T) {
	l, err := setLogger("production")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(2))
}

func TestSetLoggerSetsLocalLogger(t *testing.T) {
	l, err := setLogger("local")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(0))
}

func TestSetLoggerRejectsUnknown(t *testing.T) {
	_, err := setLogger("staging-ish")
	assert.Error(t, err)
}
