package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	intrnl "cowatch/internal"
	"cowatch/internal/app"
)

func main() {
	flagSet := flag.NewFlagSet("cowatch", flag.ExitOnError)
	username := flagSet.String("user", envOrDefault("COWATCH_USER", ""), "username for sign-in")
	password := flagSet.String("password", envOrDefault("COWATCH_PASSWORD", ""), "password for sign-in")
	sessionPath := flagSet.String("session", envOrDefault("COWATCH_SESSION_PATH", ""), "session file path")
	db := flagSet.String("db", envOrDefault("COWATCH_DB_PATH", ""), "sqlite transcript cache path")
	debugAddr := flagSet.String("debug-addr", envOrDefault("COWATCH_DEBUG_ADDR", ""), "optional address for the JSON metrics endpoint")
	quiet := flagSet.Bool("quiet", false, "suppress informational logs")
	showVersion := flagSet.Bool("version", false, "print version and exit")
	flagSet.Usage = func() {
		fmt.Fprintf(flagSet.Output(), "usage: cowatch [flags] <room URL>\n\n")
		fmt.Fprintf(flagSet.Output(), "example: cowatch --user alice https://example.com/rooms/7b0e…\n\n")
		flagSet.PrintDefaults()
	}
	flagSet.Parse(os.Args[1:])

	if *showVersion {
		fmt.Println(intrnl.VersionString())
		return
	}

	roomURL := ""
	if remaining := flagSet.Args(); len(remaining) > 0 {
		roomURL = remaining[0]
	}
	if roomURL == "" {
		flagSet.Usage()
		os.Exit(2)
	}

	if *quiet {
		log.SetOutput(io.Discard)
	}

	cfg := app.ClientConfig{
		RoomURL:     roomURL,
		Username:    *username,
		Password:    *password,
		SessionPath: *sessionPath,
		DBPath:      *db,
		DebugAddr:   *debugAddr,
	}
	if cfg.SessionPath == "" {
		cfg.SessionPath = app.DefaultSessionPath()
	}

	if err := app.RunClient(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "cowatch: %v\n", err)
		os.Exit(1)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
