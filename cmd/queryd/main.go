// Command queryd is the query-path daemon: it answers search/analog_search
// requests over an already-ingested corpus. Framing (HTTP/CLI/auth) is out
// of scope (spec.md §1); this main wires Core and exercises it once against
// a query given on the command line, the way cmd/search does in the
// teacher's tree.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"aedocs/internal/config"
	"aedocs/internal/core"
	"aedocs/internal/corelog"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("queryd")
	}
}

func run() error {
	cfg, err := config.Load(getenv("AEDOCS_CONFIG_PATH", ""))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := corelog.New(os.Stdout, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Query.Deadline+5*time.Second)
	defer cancel()

	c, closeCore, err := core.Bootstrap(ctx, cfg, core.Providers{}, logger)
	if err != nil {
		return fmt.Errorf("bootstrap core: %w", err)
	}
	defer func() {
		if err := closeCore(); err != nil {
			log.Error().Err(err).Msg("error closing core")
		}
	}()

	query := strings.Join(os.Args[1:], " ")
	if query == "" {
		return fmt.Errorf("usage: queryd <query text>")
	}

	limit := getenvInt("AEDOCS_QUERY_LIMIT", 10)
	filters := map[string]string{}
	if discipline := getenv("AEDOCS_QUERY_DISCIPLINE", ""); discipline != "" {
		filters["discipline"] = discipline
	}

	ans, err := c.Search(ctx, query, filters, limit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	out, err := json.MarshalIndent(ans, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
