package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"nexdoc/console/api"
	"nexdoc/console/config"
	"nexdoc/console/mockapi"
	"nexdoc/console/models"
	"nexdoc/console/security"
	"nexdoc/console/services"
	"nexdoc/console/session"
)

// main runs a headless smoke pass over the NexDoc client stack: log in,
// load every screen's collection, resolve one risk. In demo mode the
// in-memory mock backend is started first and the client is pointed at it.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	baseURL := cfg.APIBaseURL
	if cfg.DemoMode {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatalf("Failed to start demo backend: %v", err)
		}
		defer ln.Close()
		go func() {
			if err := http.Serve(ln, mockapi.New().Handler()); err != nil && !errors.Is(err, net.ErrClosed) {
				log.Errorf("Demo backend stopped: %v", err)
			}
		}()
		baseURL = "http://" + ln.Addr().String()
		log.Infof("Demo mode: mock backend listening on %s", baseURL)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid display timezone %q: %v", cfg.DisplayTimezone, err)
	}

	cipher := security.NewCipher(cfg.EncryptionKey)
	if cipher == nil {
		log.Warn("NEXDOC_ENCRYPTION_KEY not set, session is stored unencrypted")
	}

	sess, err := session.Open(cfg.SessionDBPath, cipher)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer sess.Close()
	sess.SetOnUnauthorized(func() {
		log.Warn("Session expired, please log in again")
	})

	client := api.NewClient(baseURL, sess, cfg.RequestTimeout)

	auth := services.NewAuthService(client, sess)
	contracts := services.NewContractService(client, loc)
	risks := services.NewRiskService(client)
	team := services.NewTeamService(client)
	archive := services.NewArchiveService(client, loc)
	knowledge := services.NewKnowledgeService(client, loc)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if sess.Token() == "" {
		email := os.Getenv("NEXDOC_EMAIL")
		password := os.Getenv("NEXDOC_PASSWORD")
		if cfg.DemoMode && email == "" {
			email, password = "demo@nexdoc.ai", "demo123"
		}
		if err := auth.Login(ctx, services.LoginInput{Email: email, Password: password}); err != nil {
			log.Fatalf("Login failed: %v", err)
		}
	}
	if profile := sess.Profile(); profile != nil {
		log.Infof("Signed in as %s (%s)", profile.Name, profile.Email)
	}

	if err := contracts.Store.Fetch(ctx); err != nil {
		log.Fatalf("Failed to load contracts: %v", err)
	}
	log.Infof("Contracts: %d", contracts.Store.Len())
	for _, c := range contracts.Store.Records() {
		log.Infof("  [%s] %s (%s, %d risks, uploaded %s)", c.Status, c.Name, c.Size, c.Risks.Total(), c.UploadDate)
	}

	if err := risks.Store.Fetch(ctx); err != nil {
		log.Fatalf("Failed to load risks: %v", err)
	}
	log.Infof("Risks: %d", risks.Store.Len())
	for _, stat := range risks.Stats() {
		log.Infof("  %s: %d", stat.Name, stat.Value)
	}

	// Resolve the first pending risk to exercise the confirmed-mutation path.
	for _, r := range risks.Store.Records() {
		if r.Status == models.RiskPending {
			if err := risks.Resolve(ctx, r); err != nil {
				log.Errorf("Failed to resolve risk %s: %v", r.ID, err)
			} else {
				log.Infof("Resolved risk %q", r.Title)
			}
			break
		}
	}

	if err := team.Store.Fetch(ctx); err != nil {
		log.Fatalf("Failed to load team members: %v", err)
	}
	log.Infof("Team members: %d", team.Store.Len())

	if err := archive.Store.Fetch(ctx); err != nil {
		log.Fatalf("Failed to load archive: %v", err)
	}
	log.Infof("Archive items: %d across %d folders", archive.Store.Len(), len(archive.Folders()))

	if err := knowledge.Store.Fetch(ctx); err != nil {
		log.Fatalf("Failed to load knowledge base: %v", err)
	}
	log.Infof("Knowledge articles: %d", knowledge.Store.Len())

	fmt.Println("OK")
}
