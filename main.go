package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ASSETRACK-backend/internal/app"
	"ASSETRACK-backend/internal/platform/auth"
	"ASSETRACK-backend/internal/platform/config"
	"ASSETRACK-backend/internal/platform/db"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	createAdmin := flag.String("create-admin", "", "create an admin account (user:password) and exit")
	flag.Parse()

	// 設定読み込み
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	log.Printf("[INFO] mode:%s version:%s", cfg.Mode, cfg.Version)

	if cfg.Auth.JWTSecret == "" {
		// dev のみ。再起動でトークンは無効になる
		cfg.Auth.JWTSecret = randomSecret()
		log.Println("[WARN] auth.jwt_secret is empty; using a per-process secret")
	}

	conn, dialect, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	defer conn.Close()
	log.Printf("[INFO] connected to DB: %s", cfg.DB.Driver)

	if err := db.Migrate(context.Background(), conn, cfg.DB.Driver); err != nil {
		log.Fatalf("[FATAL] migrate: %v", err)
	}

	authSvc := auth.NewService(conn, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)

	if *createAdmin != "" {
		if err := bootstrapAdmin(authSvc, *createAdmin); err != nil {
			log.Fatalf("[FATAL] create admin: %v", err)
		}
		return
	}

	gin.SetMode(gin.ReleaseMode)
	r := app.NewRouter(cfg, app.Deps{DB: conn, Dialect: dialect, Auth: authSvc})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	certFile, keyFile := cfg.TLSFiles()
	go func() {
		var err error
		if certFile != "" {
			log.Printf("[INFO] listening on https://%s", cfg.Server.Addr)
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			log.Printf("[INFO] listening on http://%s", cfg.Server.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}

func bootstrapAdmin(svc *auth.Service, cred string) error {
	user, pw, ok := strings.Cut(cred, ":")
	if !ok || user == "" || pw == "" {
		return fmt.Errorf("expected user:password, got %q", cred)
	}
	if err := svc.Register(context.Background(), user, pw, auth.RoleAdmin); err != nil {
		return err
	}
	log.Printf("[INFO] admin %q created", user)
	return nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
