// osbase - combat statistics and team balancing for a match server
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/Pintuzoft/osbase/internal/api"
	"github.com/Pintuzoft/osbase/internal/balance"
	"github.com/Pintuzoft/osbase/internal/config"
	"github.com/Pintuzoft/osbase/internal/engine"
	"github.com/Pintuzoft/osbase/internal/modules"
	"github.com/Pintuzoft/osbase/internal/rating"
	"github.com/Pintuzoft/osbase/internal/stats"
	"github.com/Pintuzoft/osbase/internal/storage"
	"github.com/Pintuzoft/osbase/internal/transport"
	"github.com/olekukonko/tablewriter"
	flag "github.com/spf13/pflag"
)

var version = "dev"

const defaultConfigPath = "/etc/osbase/config.yml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "ratings":
		cmdRatings(os.Args[2:])
	case "bombsites":
		cmdBombsites(os.Args[2:])
	case "version":
		fmt.Printf("osbase %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: osbase <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                    Run the stats and balancing daemon")
	fmt.Println("  ratings [--top N]        Show the rating leaderboard (default: 20)")
	fmt.Println("  bombsites                Show the learned per-map bombsite table")
	fmt.Println("  version                  Show version")
}

// loadConfig reads the config file, falling back to defaults when it is
// absent so a bare `osbase serve` works out of the box.
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		// Load wraps the read error, so unwrap-aware matching is required.
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("No config at %s, using defaults", path)
			return config.Default()
		}
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to config file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)

	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	bus, err := transport.Connect(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect event bus: %v", err)
	}
	defer bus.Close()

	cache := rating.NewCache(store, cfg.Balancer.RatingWindow)

	eng := engine.New(cfg, stats.NewStore(), cache, store, bus)
	if err := eng.LoadModules(cfg, modules.All()); err != nil {
		log.Fatalf("Failed to load modules: %v", err)
	}

	hub := api.NewHub()
	go hub.Run()
	eng.AddObserver(hub.Broadcast)

	if err := bus.SubscribeEvents(eng.Submit); err != nil {
		log.Fatalf("Failed to subscribe to game events: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warm the rating cache before the first map event arrives.
	cache.RefreshBackground(ctx)

	addr := fmt.Sprintf("%s:%d", cfg.Server.ListenAddr, cfg.Server.HTTPPort)
	httpServer := &http.Server{Addr: addr, Handler: api.Router(hub, eng)}
	go func() {
		log.Printf("Observer API listening on http://%s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	log.Printf("osbase %s serving (map events via NATS)", version)
	eng.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("Shutdown complete")
}

func cmdRatings(args []string) {
	fs := flag.NewFlagSet("ratings", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to config file")
	top := fs.Int("top", 20, "Number of players to show")
	fs.Parse(args)

	cfg := loadConfig(*configPath)

	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	since := time.Now().Add(-cfg.Balancer.RatingWindow)
	summaries, err := store.TopRatings(ctx, since, *top)
	if err != nil {
		log.Fatalf("Failed to query ratings: %v", err)
	}
	if len(summaries) == 0 {
		fmt.Println("No ratings logged yet.")
		return
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header("#", "NAME", "STEAM ID", "AVG SKILL", "MAPS", "LAST SEEN")
	for i, s := range summaries {
		table.Append(
			strconv.Itoa(i+1),
			s.Name,
			s.SteamID,
			fmt.Sprintf("%.0f", s.AvgSkill),
			strconv.Itoa(s.Maps),
			s.LastSeen,
		)
	}
	table.Render()
}

func cmdBombsites(args []string) {
	fs := flag.NewFlagSet("bombsites", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to config file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)

	sites := balance.NewSiteTable(cfg.Balancer.BombsitesPath)
	all := sites.All()
	if len(all) == 0 {
		fmt.Println("No maps learned yet.")
		return
	}

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	table := tablewriter.NewTable(os.Stdout)
	table.Header("MAP", "BOMBSITES")
	for _, name := range names {
		table.Append(name, strconv.Itoa(all[name]))
	}
	table.Render()
}
