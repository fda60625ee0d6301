package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/electr1fy0/bluenote/api"
	"github.com/electr1fy0/bluenote/config"
	"github.com/electr1fy0/bluenote/model"
	"github.com/electr1fy0/bluenote/notes"
	"github.com/electr1fy0/bluenote/server"
	"github.com/electr1fy0/bluenote/storage"
	"github.com/spf13/pflag"
)

const usage = `usage:
  bluenote [flags]          open the notes client
  bluenote serve [flags]    run the development notes backend

flags:
`

func main() {
	args := os.Args[1:]
	serve := len(args) > 0 && args[0] == "serve"
	if serve {
		args = args[1:]
	}

	flags := pflag.NewFlagSet("bluenote", pflag.ExitOnError)
	configFile := flags.String("config", "", "path to a config file (yaml, json or toml)")
	flags.String("api-url", "", "base URL of the notes backend")
	flags.Duration("request-timeout", 0, "per-request timeout")
	flags.String("log-file", "", "where the client writes its log")
	flags.String("addr", "", "listen address for serve")
	flags.String("data-file", "", "persist the serve notebook to this file")
	flags.String("passphrase", "", "encrypt the data file with this passphrase")
	flags.String("database-url", "", "postgres URL for serve")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	_ = flags.Parse(args)

	cfg, err := config.Load(*configFile, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	if serve {
		if err := runServer(cfg); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := runClient(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runClient(cfg *config.Config) error {
	f, err := tea.LogToFile(cfg.LogFile, "bluenote")
	if err != nil {
		return fmt.Errorf("tea.LogToFile: %w", err)
	}
	defer f.Close()

	style := "light"
	if lipgloss.HasDarkBackground() {
		style = "dark"
	}

	client := api.New(cfg.APIURL, cfg.RequestTimeout)
	log.Printf("using notes backend %s", client.BaseURL())

	p := tea.NewProgram(model.New(client, model.Options{MarkdownStyle: style}), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runServer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store notes.Repository
	switch {
	case cfg.Server.DatabaseURL != "":
		pg, err := storage.OpenPostgres(ctx, cfg.Server.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()
		store = pg
		log.Println("storing notes in postgres")
	case cfg.Server.DataFile != "":
		v, err := storage.OpenVault(cfg.Server.DataFile, cfg.Server.Passphrase)
		if err != nil {
			return err
		}
		store = v
		log.Printf("storing notes in %s", v.Path())
	default:
		store = storage.NewNotebook()
		log.Println("storing notes in memory")
	}

	srv := server.New(store, server.Options{
		Addr:        cfg.Server.Addr,
		CORSOrigins: cfg.Server.CORSOrigins,
		RateRPS:     cfg.Server.RateRPS,
		RateBurst:   cfg.Server.RateBurst,
	})
	return server.Run(ctx, srv)
}
