package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwhitfield/atelier/internal/blob"
	"github.com/jwhitfield/atelier/internal/database"
	"github.com/jwhitfield/atelier/internal/logging"
	"github.com/jwhitfield/atelier/internal/server"
	"github.com/jwhitfield/atelier/internal/store"
)

const recoveryCodeCount = 8

func main() {
	initOperator := flag.String("init-operator", "", "register the operator with this name, print credentials, and exit")
	flag.Parse()

	port := os.Getenv("ATELIER_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("ATELIER_DB_PATH")
	if dbPath == "" {
		dbPath = "atelier.db"
	}

	logger := logging.Setup(os.Getenv("ATELIER_LOG_LEVEL"), os.Getenv("ATELIER_LOG_FORMAT") == "json")

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if *initOperator != "" {
		if err := bootstrapOperator(db, *initOperator); err != nil {
			log.Fatalf("init operator: %v", err)
		}
		return
	}

	tokenSecret := os.Getenv("ATELIER_TOKEN_SECRET")
	if tokenSecret == "" {
		log.Fatal("ATELIER_TOKEN_SECRET is required")
	}

	blobClient := blob.New(blob.Config{
		Endpoint:      os.Getenv("ATELIER_S3_ENDPOINT"),
		Bucket:        os.Getenv("ATELIER_S3_BUCKET"),
		Region:        os.Getenv("ATELIER_S3_REGION"),
		AccessKey:     os.Getenv("ATELIER_S3_ACCESS_KEY"),
		SecretKey:     os.Getenv("ATELIER_S3_SECRET_KEY"),
		PublicBaseURL: os.Getenv("ATELIER_PUBLIC_URL"),
	})
	if !blobClient.Configured() {
		logger.Warn("blob storage not configured; uploads will fail")
	}

	srv := server.New(db, blobClient, tokenSecret, logger)

	// Janitor for expired sessions and stale rate-limit entries
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			srv.SessionCache().Cleanup()
			srv.RateLimiter().Cleanup()
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("atelier listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

// bootstrapOperator registers the sole operator, generating the TOTP
// secret and one-time recovery codes. The plaintext codes are printed
// exactly once; only their hashes are stored.
func bootstrapOperator(db *sql.DB, name string) error {
	operators := store.NewOperatorStore(db)

	existing, err := operators.Get()
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("operator %q already registered", existing.Name)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "atelier",
		AccountName: name,
	})
	if err != nil {
		return fmt.Errorf("generate totp secret: %w", err)
	}

	op, err := operators.Create(name, key.Secret())
	if err != nil {
		return err
	}

	codes := make([]string, recoveryCodeCount)
	hashes := make([]string, recoveryCodeCount)
	for i := range codes {
		buf := make([]byte, 5)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("generate recovery code: %w", err)
		}
		codes[i] = hex.EncodeToString(buf)
		h, err := bcrypt.GenerateFromPassword([]byte(codes[i]), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash recovery code: %w", err)
		}
		hashes[i] = string(h)
	}
	if err := operators.SetRecoveryCodes(op.ID, hashes); err != nil {
		return err
	}

	fmt.Printf("Operator %q registered.\n\n", name)
	fmt.Printf("TOTP secret (add to your authenticator app):\n  %s\n\n", key.Secret())
	fmt.Printf("Provisioning URL:\n  %s\n\n", key.URL())
	fmt.Println("Recovery codes (single use, store them somewhere safe):")
	for _, c := range codes {
		fmt.Printf("  %s\n", c)
	}
	return nil
}
