// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelvt/main.go
// Summary: Runs a shell inside the texelvt emulator on the current
// terminal.

package main

import (
	"flag"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/framegrace/texelvt/apps/texelvt"
)

func main() {
	command := flag.String("e", "", "command to run (defaults to $SHELL)")
	histLimit := flag.Int("history", 10000, "scroll-back limit in rows")
	storePath := flag.String("store", "", "sqlite path for persisted scroll-back")
	session := flag.String("session", "default", "snapshot name in the store")
	logPath := flag.String("log", "", "debug log file")
	flag.Parse()

	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			log.Fatalf("texelvt: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(os.Stderr)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		log.Fatal("texelvt: stdin is not a terminal")
	}

	cmd := *command
	if cmd == "" {
		cmd = os.Getenv("SHELL")
	}

	app := texelvt.NewApp(texelvt.Options{
		Command:      cmd,
		Args:         flag.Args(),
		HistoryLimit: *histLimit,
		StorePath:    *storePath,
		Session:      *session,
	})
	code, err := app.Run()
	if err != nil {
		log.Fatalf("texelvt: %v", err)
	}
	os.Exit(code)
}
