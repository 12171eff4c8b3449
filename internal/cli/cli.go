// Package cli implements the rdysl command-line interface.
//
// Three subcommands cover the system's entry points: "callups" runs a
// one-shot callup scrape and prints the summary, "season" scrapes every
// division's schedule into a CSV, and "serve" runs the long-lived process
// with the cache engine and the REST/WebSocket servers.
package cli

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldside/rdysl/internal/browser"
	"github.com/fieldside/rdysl/internal/scrape"
	"github.com/fieldside/rdysl/internal/summary"
)

// Config is the process configuration, read from the environment.
type Config struct {
	BaseURL          string
	LoginURL         string
	CallupURLs       []string
	ScheduleIndexURL string
	Username         string
	Password         string
	CacheTTL         time.Duration
	RedisURL         string
	RESTPort         string
	WSPort           string
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() Config {
	base := strings.TrimRight(getEnv("RDYSL_BASE_URL", "https://www.rdysl.com"), "/")

	var callupURLs []string
	for _, p := range strings.Split(getEnv("RDYSL_CALLUP_PAGES", "/callups.aspx"), ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		callupURLs = append(callupURLs, base+"/"+strings.TrimLeft(p, "/"))
	}

	ttl := summary.DefaultTTL
	if raw := os.Getenv("CACHE_TTL_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
	}

	return Config{
		BaseURL:          base,
		LoginURL:         base + "/" + strings.TrimLeft(getEnv("RDYSL_LOGIN_PAGE", "/login.aspx"), "/"),
		CallupURLs:       callupURLs,
		ScheduleIndexURL: base + "/" + strings.TrimLeft(getEnv("RDYSL_SCHEDULE_PAGE", "/schedules.aspx"), "/"),
		Username:         os.Getenv("RDYSL_USERNAME"),
		Password:         os.Getenv("RDYSL_PASSWORD"),
		CacheTTL:         ttl,
		RedisURL:         os.Getenv("REDIS_URL"),
		RESTPort:         getEnv("REST_PORT", "8080"),
		WSPort:           getEnv("WS_PORT", "8081"),
	}
}

// NewRunner wires a scrape runner from the configuration.
func (c Config) NewRunner() *scrape.Runner {
	manager := browser.NewManager(browser.Config{})
	return scrape.NewRunner(scrape.Config{
		LoginURL:         c.LoginURL,
		CallupURLs:       c.CallupURLs,
		ScheduleIndexURL: c.ScheduleIndexURL,
		Credentials: scrape.Credentials{
			Username: c.Username,
			Password: c.Password,
		},
	}, manager)
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rdysl",
		Short: "RDYSL callup and schedule scraper",
		Long: `Scrapes the RDYSL league site for player callup records and division
schedules. Credentials come from RDYSL_USERNAME and RDYSL_PASSWORD.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newCallupsCmd())
	cmd.AddCommand(newSeasonCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
