package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/casedesk-api/api/handlers"
	"github.com/linesmerrill/casedesk-api/config"
	"github.com/linesmerrill/casedesk-api/databases"
	mocksdb "github.com/linesmerrill/casedesk-api/databases/mocks"
	"github.com/linesmerrill/casedesk-api/databases/memory"
)

func TestApp_InitializeServesRoutes(t *testing.T) {
	db := memory.New()
	a := handlers.App{
		Config: config.Config{DatabaseName: "casedesk", SweepSchedule: config.DefaultSweepSchedule},
		NewClient: func(*config.Config) (databases.ClientHelper, error) {
			return memory.NewClient(db), nil
		},
	}
	require.NoError(t, a.Initialize(context.Background()))
	defer func() { assert.NoError(t, a.Close(context.Background())) }()

	assert.Equal(t, http.StatusOK, do(t, &a, http.MethodGet, "/health", "").Code)
	createCase(t, &a, "2024-03-01")
	assert.Equal(t, 1, db.Len(databases.CaseName))
}

func TestApp_InitializePingFailure(t *testing.T) {
	client := &mocksdb.ClientHelper{}
	client.On("Connect", mock.Anything).Return(nil)
	client.On("Ping", mock.Anything).Return(databases.ErrStorageUnavailable)
	client.On("Disconnect", mock.Anything).Return(nil)

	a := handlers.App{
		Config: config.Config{DatabaseName: "casedesk", SweepSchedule: config.DefaultSweepSchedule},
		NewClient: func(*config.Config) (databases.ClientHelper, error) {
			return client, nil
		},
	}
	err := a.Initialize(context.Background())

	assert.ErrorIs(t, err, databases.ErrStorageUnavailable)
	assert.Nil(t, a.Router)
	client.AssertCalled(t, "Disconnect", mock.Anything)
	client.AssertNotCalled(t, "Database", mock.Anything)
}

func TestApp_InitializeClientFailure(t *testing.T) {
	a := handlers.App{
		NewClient: func(*config.Config) (databases.ClientHelper, error) {
			return nil, errors.New("bad uri")
		},
	}
	assert.EqualError(t, a.Initialize(context.Background()), "bad uri")
	assert.NoError(t, a.Close(context.Background()))
}

func TestApp_InitializeBadSchedule(t *testing.T) {
	a := handlers.App{
		Config: config.Config{DatabaseName: "casedesk", SweepSchedule: "every so often"},
		NewClient: func(*config.Config) (databases.ClientHelper, error) {
			return memory.NewClient(memory.New()), nil
		},
	}
	assert.Error(t, a.Initialize(context.Background()))
	assert.NoError(t, a.Close(context.Background()))
}
