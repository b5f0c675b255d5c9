// TorBox collection browser.
//
// Searches the torrent collection behind a TorBox account, browses a
// torrent's files level by level, streams a file in mpv or queues files in a
// local JDownloader, and remembers where you left off between runs.
//
// Usage:
//
//	torbox-browser [-env .env] [-session FILE] [-jd URL] [-mpv PATH]
//
// TORBOX_API_KEY (base64-encoded) must be set in the environment or the env
// file.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/AsimMerchant/mpv-torbox-setup/internal/config"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/dispatch"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/jdownloader"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/logging"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/nav"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/player"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/session"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/torbox"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/tui"
)

func main() {
	envFile := flag.String("env", ".env", "Env file with TORBOX_API_KEY and friends")
	sessionFile := flag.String("session", "", "Session file (default: per-user config dir)")
	jdURL := flag.String("jd", "", "JDownloader Click'n'Load URL (default: http://127.0.0.1:9666)")
	mpvPath := flag.String("mpv", "", "mpv binary (default: mpv from PATH)")
	logFile := flag.String("log-file", "", "Log file (default: per-user config dir, empty string disables)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")

	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *sessionFile != "" {
		cfg.SessionPath = *sessionFile
	}
	if *jdURL != "" {
		cfg.JDownloaderURL = *jdURL
	}
	if *mpvPath != "" {
		cfg.MPVPath = *mpvPath
	}
	if isSet("log-file") {
		cfg.LogFile = *logFile
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	if err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		Format:     "json",
		OutputPath: cfg.LogFile,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: logging setup failed: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	client := torbox.New(torbox.Config{
		BaseURL: cfg.APIURL,
		APIKey:  cfg.APIKey,
	})
	mpv := player.NewMPV(cfg.MPVPath)
	jd := jdownloader.New(cfg.JDownloaderURL)
	dispatcher := dispatch.New(client, jd)
	store := session.NewStore(cfg.SessionPath)

	machine := nav.New(client, client, mpv, dispatcher, store)

	if err := tui.Run(machine); err != nil {
		logging.Error("ui terminated", zap.Error(err))
		logging.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isSet reports whether a flag was passed explicitly, so an empty -log-file
// can mean "disable logging" rather than "use the default".
func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
