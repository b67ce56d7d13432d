package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/jusunglee/penzgtu-go/internal/config"
	"github.com/jusunglee/penzgtu-go/internal/models"
	"github.com/jusunglee/penzgtu-go/internal/navigator"
	"github.com/jusunglee/penzgtu-go/internal/telemetry"
	"github.com/jusunglee/penzgtu-go/pkg/penzgtu"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "Path to a YAML config file")
		url     = flag.String("url", "", "Upstream API URL, overriding the configuration")
		level   = flag.String("level", "", "Level key")
		form    = flag.String("form", "", "Form key")
		typ     = flag.String("type", "", "Schedule type (tt or att)")
		year    = flag.String("year", "", "Year index (type tt)")
		stream  = flag.String("stream", "", "Stream title (type att)")
		group   = flag.String("group", "", "Group key; prints the timetable")
		weeknum = flag.Bool("weeknum", false, "Print the current week number and exit")
		timeout = flag.Duration("timeout", 0, "Upstream request timeout, overriding the configuration")
	)
	flag.Parse()

	cfg, err := loadConfig(*cfgPath, *url, *timeout)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := telemetry.SetupLogger(cfg.Server.LogLevel, "text")

	client := penzgtu.NewRemote(cfg.Upstream.Client(), logger)
	ctx := context.Background()

	if *weeknum {
		week, err := client.GetWeekNum(ctx)
		if err != nil {
			slog.Error("Failed to get week number", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Week %d\n", week.WeekNum)
		return
	}

	q := models.TimetableQuery{
		Level:  *level,
		Form:   *form,
		Type:   *typ,
		Year:   *year,
		Stream: *stream,
		Group:  *group,
	}

	// Timetable mode
	if q.Group != "" {
		if err := navigator.Validate(q, navigator.EndpointTimetable); err != nil {
			slog.Error("Invalid query", "error", err)
			os.Exit(1)
		}
		data, err := client.GetTimetable(ctx, q)
		if err != nil {
			slog.Error("Failed to get timetable", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	meta, err := client.GetTimetableMeta(ctx)
	if err != nil {
		slog.Error("Failed to get timetable metadata", "error", err)
		os.Exit(1)
	}

	// Walk down the tree as far as the flags go
	var (
		title   string
		entries map[string]string
	)
	switch {
	case q.Level == "":
		title, entries = "Levels", navigator.Levels(meta)
	case q.Form == "":
		title = "Forms of " + q.Level
		entries, err = navigator.Forms(meta, q.Level)
	case q.Type == "":
		title = "Types of " + q.Level + "/" + q.Form
		entries, err = navigator.Types(meta, q.Level, q.Form)
	case q.Year == "" && q.Stream == "" && q.Type == models.TypeAttestation:
		title = "Streams"
		entries, err = navigator.Streams(meta, q.Level, q.Form, q.Type)
	case q.Year == "" && q.Stream == "":
		title = "Years"
		entries, err = navigator.Years(meta, q.Level, q.Form, q.Type)
	default:
		if err = navigator.Validate(q, navigator.EndpointGroups); err == nil {
			title = "Groups"
			entries, err = navigator.Groups(meta, q)
		}
	}
	if err != nil {
		slog.Error("Failed to navigate timetable metadata", "error", err)
		os.Exit(1)
	}

	fmt.Printf("\n%s:\n", title)
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("- %s (%s)\n", entries[k], k)
	}
}

// loadConfig resolves configuration the same way the server does, then
// applies the non-zero command line overrides.
func loadConfig(path, url string, timeout time.Duration) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if url != "" {
		cfg.Upstream.URL = url
	}
	if timeout > 0 {
		cfg.Upstream.Timeout = timeout
	}
	return cfg, nil
}
