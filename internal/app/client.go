package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	intrnl "cowatch/internal"
	"cowatch/internal/storage"
)

// RunClient signs in (or reuses a stored session), opens the local transcript
// cache, and launches the TUI against the room named by the URL.
func RunClient(cfg ClientConfig) error {
	if cfg.RoomURL == "" {
		return errors.New("room URL is required")
	}

	roomID, err := intrnl.ParseRoomID(cfg.RoomURL)
	if err != nil {
		return fmt.Errorf("parse room URL: %w", err)
	}
	baseURL, err := intrnl.HTTPBaseURL(cfg.RoomURL)
	if err != nil {
		return err
	}
	wsURL, err := intrnl.WebsocketURL(cfg.RoomURL)
	if err != nil {
		return err
	}

	sessionID, err := resolveSession(cfg, baseURL)
	if err != nil {
		return err
	}

	store, err := openStore(cfg.DBPath)
	if err != nil {
		log.Printf("transcript cache unavailable: %v", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	metrics := intrnl.NewMetrics()
	if cfg.DebugAddr != "" {
		go serveDebug(cfg.DebugAddr, metrics)
	}

	header := http.Header{}
	header.Set("Cookie", fmt.Sprintf("sessionId=%s", sessionID))
	transport := intrnl.NewTransport(wsURL, header)

	return intrnl.RunClient(intrnl.RunConfig{
		RoomURL:   cfg.RoomURL,
		RoomID:    roomID,
		SessionID: sessionID,
		Store:     store,
		Metrics:   metrics,
	}, transport)
}

// resolveSession prefers a stored session that still passes /user/me, and
// falls back to a fresh sign-in with the provided credentials.
func resolveSession(cfg ClientConfig, baseURL string) (string, error) {
	if stored := intrnl.LoadSession(cfg.SessionPath); stored != nil {
		if _, err := intrnl.APIGetMe(baseURL, stored.SessionID); err == nil {
			return stored.SessionID, nil
		}
	}
	if cfg.Username == "" || cfg.Password == "" {
		return "", errors.New("no valid stored session; provide --user and --password")
	}
	sessionID, err := intrnl.APISignIn(baseURL, cfg.Username, cfg.Password)
	if err != nil {
		return "", fmt.Errorf("sign in: %w", err)
	}
	if err := intrnl.SaveSession(cfg.SessionPath, cfg.Username, sessionID); err != nil {
		log.Printf("could not persist session: %v", err)
	}
	return sessionID, nil
}

func openStore(path string) (*storage.Store, error) {
	if path == "" {
		path = DefaultDBPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	store, err := storage.NewStore(path)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func serveDebug(addr string, metrics *intrnl.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("debug listener: %v", err)
	}
}
