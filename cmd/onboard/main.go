// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

// onboard is the Devcade cabinet's on-device runtime. It provisions
// games from the catalog, launches them sandboxed, and brokers the
// NFC card reader.
//
// Usage:
//
//	onboard list [flags]
//	onboard provision [flags] <game-id>
//	onboard launch [flags] <game-id>
//	onboard nfc poll [flags]
//	onboard nfc user [flags] <handle>
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/devcade/onboard/flatpak"
	"github.com/devcade/onboard/lib/catalog"
	"github.com/devcade/onboard/lib/config"
	"github.com/devcade/onboard/lib/gamestore"
	"github.com/devcade/onboard/lib/launch"
	"github.com/devcade/onboard/lib/nfc"
	"github.com/devcade/onboard/lib/nfc/gatekeeper"
	"github.com/devcade/onboard/lib/persist"
	"github.com/devcade/onboard/lib/provision"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if os.Getenv("DEVCADE_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "list":
		err = listCmd(args, logger)
	case "provision":
		err = provisionCmd(args, logger)
	case "launch":
		err = launchCmd(args, logger)
	case "nfc":
		err = nfcCmd(args, logger)
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`onboard - Devcade cabinet runtime

USAGE
    onboard <command> [flags] [args...]

COMMANDS
    list       List games (catalog, or local cache when offline)
    provision  Fetch, unpack, and sandbox a game without launching it
    launch     Provision if needed, then run a game to completion
    nfc poll   Poll the card reader once for a present card
    nfc user   Resolve a card handle to its user record

ENVIRONMENT
    DEVCADE_CONFIG  Path to the YAML config file
    DEVCADE_DEBUG   Enable debug logging
`)
}

// configFlags returns a flag set with the shared --config flag bound.
func configFlags(name string, configPath *string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.StringVar(configPath, "config", "", "path to config file (overrides DEVCADE_CONFIG)")
	return flags
}

func loadConfig(configPath string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runtime is the wired-up object graph shared by the subcommands.
type runtime struct {
	config   *config.Config
	catalog  *catalog.Client
	store    *gamestore.Store
	builder  *flatpak.Builder
	pipeline *provision.Pipeline
	registry *launch.Registry
	launcher *launch.Launcher
}

func buildRuntime(cfg *config.Config, logger *slog.Logger) *runtime {
	client := catalog.New(cfg.APIURL, logger)
	store := gamestore.New(cfg.DevcadePath, logger)
	builder := flatpak.NewBuilder(flatpak.BuilderConfig{
		Namespace:         cfg.Namespace,
		PersistenceSocket: cfg.PersistenceSocket,
		Store:             store,
		Logger:            logger,
	})
	pipeline := provision.NewPipeline(provision.PipelineConfig{
		Catalog: client,
		Store:   store,
		Sandbox: builder,
		Logger:  logger,
	})
	registry := launch.NewRegistry()
	launcher := launch.NewLauncher(launch.LauncherConfig{
		Provisioner: pipeline,
		Store:       store,
		Sandbox:     builder,
		Registry:    registry,
		Flusher:     persist.NewClient(cfg.PersistenceSocket, logger),
		Logger:      logger,
	})
	return &runtime{
		config:   cfg,
		catalog:  client,
		store:    store,
		builder:  builder,
		pipeline: pipeline,
		registry: registry,
		launcher: launcher,
	}
}

func listCmd(args []string, logger *slog.Logger) error {
	var configPath string
	flags := configFlags("list", &configPath)
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	rt := buildRuntime(cfg, logger)

	ctx := context.Background()
	games, err := rt.catalog.GameList(ctx)
	if err != nil {
		logger.Warn("catalog unreachable, listing local cache", "error", err)
		games, err = rt.store.ListInstalled()
		if err != nil {
			return err
		}
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tNAME\tAUTHOR")
	for _, game := range games {
		fmt.Fprintf(writer, "%s\t%s\t%s\n", game.ID, game.Name, game.Author)
	}
	return writer.Flush()
}

func provisionCmd(args []string, logger *slog.Logger) error {
	var configPath string
	flags := configFlags("provision", &configPath)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: onboard provision [flags] <game-id>")
	}
	id := flags.Arg(0)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	rt := buildRuntime(cfg, logger)

	if err := rt.pipeline.Ensure(context.Background(), id); err != nil {
		return err
	}
	fmt.Printf("game %s provisioned\n", id)
	return nil
}

func launchCmd(args []string, logger *slog.Logger) error {
	var configPath string
	flags := configFlags("launch", &configPath)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: onboard launch [flags] <game-id>")
	}
	id := flags.Arg(0)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	rt := buildRuntime(cfg, logger)

	return rt.launcher.Launch(context.Background(), id)
}

func nfcCmd(args []string, logger *slog.Logger) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: onboard nfc <poll|user> [flags] [args...]")
	}
	sub := args[0]
	args = args[1:]

	var configPath string
	flags := configFlags("nfc "+sub, &configPath)
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	rt := buildRuntime(cfg, logger)

	broker := nfc.NewBroker(nfc.BrokerConfig{
		Open:   gatekeeper.Open(cfg.GatekeeperSocket, logger),
		Games:  rt.registry,
		Logger: logger,
	})
	defer broker.Close()

	switch sub {
	case "poll":
		handle, present, err := broker.PollTags()
		if err != nil {
			return err
		}
		if !present {
			fmt.Println("no card present")
			return nil
		}
		fmt.Println(handle)
		return nil
	case "user":
		if flags.NArg() != 1 {
			return fmt.Errorf("usage: onboard nfc user [flags] <handle>")
		}
		user, ok, err := broker.User(flags.Arg(0))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("no result")
			return nil
		}
		data, err := json.MarshalIndent(user, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding user record: %w", err)
		}
		fmt.Println(string(data))
		return nil
	default:
		return fmt.Errorf("unknown nfc subcommand: %s", sub)
	}
}
