package main

import (
	"fmt"
	"log"
	"os"

	"agrosense-backend/internal/config"
	"agrosense-backend/internal/server"

	tm "github.com/buger/goterm"
	nuts "github.com/vaudience/go-nuts"
)

func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting AgroSense Field Backend v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create and start server
	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen and draws the logo.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"    ___                 _____                     ",
		"   /   | ____ __________ / ___/___  ____  ________ ",
		"  / /| |/ __ `/ ___/ __ \\\\__ \\/ _ \\/ __ \\/ ___/ _ \\",
		" / ___ / /_/ / /  / /_/ /__/ /  __/ / / (__  )  __/",
		"/_/  |_\\__, /_/   \\____/____/\\___/_/ /_/____/\\___/ ",
		"      /____/ ..................................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
