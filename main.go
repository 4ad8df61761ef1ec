// Package main provides the entry point for the Deed Drafter application.
package main

import (
	"flag"
	"log"
	"os"
	"strconv"

	fyneapp "fyne.io/fyne/v2/app"

	"github.com/Nukpro/DeedRecreator/internal/api"
	"github.com/Nukpro/DeedRecreator/internal/app"
	"github.com/Nukpro/DeedRecreator/internal/version"
	"github.com/Nukpro/DeedRecreator/ui/mainwindow"
	"github.com/Nukpro/DeedRecreator/ui/prefs"
)

const appTitle = "Deed Drafter"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	appPrefs := prefs.Load()

	serverURL := flag.String("server", "", "drafterd base URL")
	sessionID := flag.Int("session", 0, "session id to open")
	flag.Parse()

	url := *serverURL
	if url == "" {
		url = os.Getenv("DRAFTER_SERVER_URL")
	}
	if url == "" {
		url = appPrefs.String(prefs.KeyServerURL, "http://localhost:5000")
	}

	session := *sessionID
	if session == 0 {
		if env := os.Getenv("DRAFTER_SESSION_ID"); env != "" {
			if v, err := strconv.Atoi(env); err == nil {
				session = v
			}
		}
	}
	if session == 0 {
		session = appPrefs.Int(prefs.KeySessionID, 1)
	}

	appPrefs.SetString(prefs.KeyServerURL, url)
	appPrefs.SetInt(prefs.KeySessionID, session)
	if err := appPrefs.Save(); err != nil {
		log.Printf("Save preferences: %v", err)
	}

	log.Printf("Server %s, session %d", url, session)

	fyneApp := fyneapp.New()
	fyneApp.Settings().SetTheme(&app.DrafterTheme{})

	state := app.NewState()
	state.SessionID = session
	state.ServerURL = url

	win := mainwindow.New(fyneApp, state, api.New(url))
	win.SetTitle(appTitle)
	win.LoadSession()

	win.ShowAndRun()
}
