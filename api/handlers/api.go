package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/casedesk-api/aggregate"
	"github.com/linesmerrill/casedesk-api/api"
	"github.com/linesmerrill/casedesk-api/api/scheduler"
	"github.com/linesmerrill/casedesk-api/config"
	"github.com/linesmerrill/casedesk-api/databases"
	"github.com/linesmerrill/casedesk-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router *mux.Router
	Config config.Config
	// NewClient builds the database client, databases.NewClient when nil
	NewClient func(*config.Config) (databases.ClientHelper, error)

	client    databases.ClientHelper
	dbHelper  databases.DatabaseHelper
	scheduler *scheduler.Scheduler
}

// NewRouter creates a new mux router and all the routes
func NewRouter(db databases.DatabaseHelper, conf *config.Config, metrics *api.Metrics) *mux.Router {
	composer := aggregate.NewComposer(db)

	m := Matter{DB: databases.NewMatterDatabase(db)}
	c := Case{Composer: composer}
	cloudinaryHandler := CloudinaryHandler{Config: conf.Cloudinary, Composer: composer}
	maintenance := Maintenance{Composer: composer}

	r := api.New(metrics)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.JSONMiddleware)

	apiCreate.HandleFunc("/matters", m.CreateMatterHandler).Methods("POST")
	apiCreate.HandleFunc("/matters", m.MattersHandler).Methods("GET")
	apiCreate.HandleFunc("/matters/{matter_id}", m.MatterByIDHandler).Methods("GET")
	apiCreate.HandleFunc("/matters/{matter_id}", m.UpdateMatterHandler).Methods("PATCH")
	apiCreate.HandleFunc("/matters/{matter_id}", m.DeleteMatterHandler).Methods("DELETE")
	apiCreate.HandleFunc("/matters/{matter_id}/timeline", m.AddTimelineItemHandler).Methods("POST")
	apiCreate.HandleFunc("/matters/{matter_id}/archive", m.ArchiveMatterHandler).Methods("POST")

	apiCreate.HandleFunc("/cases", c.CreateCaseHandler).Methods("POST")
	apiCreate.HandleFunc("/cases", c.CasesHandler).Methods("GET")
	apiCreate.HandleFunc("/cases/{case_id}", c.CaseDetailHandler).Methods("GET")
	apiCreate.HandleFunc("/cases/{case_id}", c.UpdateCaseHandler).Methods("PATCH")
	apiCreate.HandleFunc("/cases/{case_id}", c.DeleteCaseHandler).Methods("DELETE")
	apiCreate.HandleFunc("/cases/{case_id}/documents/signature", cloudinaryHandler.DocumentSignatureHandler).Methods("POST")

	CaseChild[models.CasePartyCreate, models.CasePartyUpdate]{
		Composer: composer,
		Kind:     aggregate.Parties,
	}.Register(apiCreate)
	CaseChild[models.CaseHearingCreate, models.CaseHearingUpdate]{
		Composer:    composer,
		Kind:        aggregate.Hearings,
		AfterCreate: c.touchOnNextHearing,
	}.Register(apiCreate)
	CaseChild[models.CaseDocumentCreate, models.CaseDocumentUpdate]{
		Composer:  composer,
		Kind:      aggregate.Documents,
		ListQuery: documentListQuery,
	}.Register(apiCreate)
	CaseChild[models.CaseNoteCreate, models.CaseNoteUpdate]{
		Composer: composer,
		Kind:     aggregate.Notes,
	}.Register(apiCreate)
	CaseChild[models.CaseTaskCreate, models.CaseTaskUpdate]{
		Composer:  composer,
		Kind:      aggregate.Tasks,
		ListQuery: taskListQuery,
	}.Register(apiCreate)

	apiCreate.HandleFunc("/maintenance/orphans", maintenance.OrphansHandler).Methods("GET")
	apiCreate.HandleFunc("/maintenance/orphans/sweep", maintenance.SweepOrphansHandler).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database, verify the
// connection and create a router. The process must not serve when it fails.
func (a *App) Initialize(ctx context.Context) error {
	newClient := a.NewClient
	if newClient == nil {
		newClient = databases.NewClient
	}

	client, err := newClient(&a.Config)
	if err != nil {
		zap.S().Errorw("failed to create new client", "error", err)
		return err
	}
	if err := client.Connect(ctx); err != nil {
		zap.S().Errorw("failed to connect to database", "error", err)
		return err
	}
	if err := client.Ping(ctx); err != nil {
		zap.S().Errorw("failed to ping database", "error", err)
		_ = client.Disconnect(context.Background())
		return err
	}
	zap.S().Infow("casedesk-api has connected to the database", "database", a.Config.DatabaseName)

	a.client = client
	a.dbHelper = databases.NewDatabase(&a.Config, client)
	a.Router = NewRouter(a.dbHelper, &a.Config, api.NewMetrics())

	a.scheduler = scheduler.NewScheduler(aggregate.NewComposer(a.dbHelper), a.Config.SweepSchedule)
	return a.scheduler.Start()
}

// Close stops background jobs and releases the database connection
func (a *App) Close(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.client == nil {
		return nil
	}
	if err := a.client.Disconnect(ctx); err != nil {
		zap.S().Errorw("failed to disconnect from database", "error", err)
		return err
	}
	zap.S().Info("casedesk-api has disconnected from the database")
	return nil
}

// ServeHTTP lets the app be used directly as the server handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.Router.ServeHTTP(w, r)
}
