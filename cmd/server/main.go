package main

import (
	"context"
	"database/sql"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/russross/blackfriday/v2"

	"github.com/gnemet/motionpitch/internal/ai"
	"github.com/gnemet/motionpitch/internal/auth"
	"github.com/gnemet/motionpitch/internal/config"
	"github.com/gnemet/motionpitch/internal/database"
	"github.com/gnemet/motionpitch/internal/i18n"
	"github.com/gnemet/motionpitch/internal/observer"
	"github.com/gnemet/motionpitch/internal/pipeline"
	"github.com/gnemet/motionpitch/internal/progress"
)

var (
	cfg      *config.Config
	sqlDB    *sql.DB
	tmpl     *template.Template
	hub      *progress.Hub
	sessions *auth.Sessions
	runner   generationRunner
	store    presentationStore
)

func main() {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	// Database Connection
	sqlDB, err = database.NewConnection(cfg.Database.GetConnectStr())
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	if err := database.EnsureSchema(sqlDB); err != nil {
		log.Fatal(err)
	}

	// Initialize Directories
	os.MkdirAll(cfg.Application.Storage.Uploads, 0755)

	// Templates
	tmpl = template.Must(template.New("").Funcs(templateFuncs()).ParseGlob("ui/templates/*.html"))

	i18n.Init("resources")

	ctx := context.Background()
	aiClient, err := ai.NewClient(ctx, cfg.AI)
	if err != nil {
		log.Fatal(err)
	}
	defer aiClient.Close()

	hub = progress.NewHub()
	sessions = auth.NewSessions(cfg.Application.SessionSecret)
	store = &pgStore{db: sqlDB}
	runner = &pipeline.Runner{
		Planner:    aiClient,
		Images:     aiClient,
		Video:      aiClient,
		Hub:        hub,
		UploadsDir: cfg.Application.Storage.Uploads,
		Workers:    cfg.AI.ImageWorkers,
	}

	// Asset observer watches the uploads directory in the background.
	obs := observer.NewObserver(sqlDB, cfg.Application.Storage.Uploads)
	go func() {
		if err := obs.Start(ctx); err != nil {
			log.Printf("Asset observer stopped: %v", err)
		}
	}()

	// Routes
	r := mux.NewRouter()
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.Application.Storage.Static))))
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Application.Storage.Uploads))))

	r.HandleFunc("/", handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/register", handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", handleLogout).Methods(http.MethodGet)
	r.HandleFunc("/generate", handleGenerate).Methods(http.MethodPost)
	r.HandleFunc("/viewer/{pid}", handleViewer).Methods(http.MethodGet)
	r.HandleFunc("/events", progress.ServeWS(hub)).Methods(http.MethodGet)

	addr := fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port)
	fmt.Printf("MotionPitch starting on http://localhost:%d\n", cfg.Application.Port)
	log.Fatal(http.ListenAndServe(addr, r))
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"markdown": func(s string) template.HTML {
			return template.HTML(blackfriday.Run([]byte(s)))
		},
		"T": i18n.T,
	}
}
