package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cognicore/ticketai/internal/app"
	"github.com/cognicore/ticketai/pkg/ticketai/config"
	"github.com/cognicore/ticketai/pkg/ticketai/stats"
	"github.com/cognicore/ticketai/pkg/ticketai/store"
	"github.com/cognicore/ticketai/pkg/ticketai/ticket"
)

type report struct {
	stats.Summary
	HighDFTerms []highDFEntry `json:"high_df_terms"`
}

type highDFEntry struct {
	Term      string  `json:"term"`
	DFPercent float64 `json:"df_percent"`
	Docs      int     `json:"docs"`
}

func main() {
	var (
		configPath = flag.String("config", "configs/config.yml", "Config file")
		dir        = flag.String("dir", "", "Read saved ticket_*.json files from this directory instead of the database")
		category   = flag.String("category", "", "Only tickets in this category")
		priority   = flag.String("priority", "", "Only tickets with this priority")
		status     = flag.String("status", "", "Only tickets with this status")
		topTerms   = flag.Int("terms", 20, "Number of high-DF terms to report")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	f := store.Filter{Category: *category, Priority: *priority, Status: *status, Limit: store.NoLimit}

	var tickets []ticket.Ticket
	if *dir != "" {
		tickets, err = loadDir(*dir, f)
	} else {
		tickets, err = loadStore(context.Background(), cfg.Database, f)
	}
	if err != nil {
		log.Fatalf("load tickets: %v", err)
	}

	out, err := json.MarshalIndent(buildReport(tickets, cfg.Confidence, *topTerms), "", "  ")
	if err != nil {
		log.Fatalf("marshal report: %v", err)
	}
	fmt.Println(string(out))
}

func loadStore(ctx context.Context, db config.Database, f store.Filter) ([]ticket.Ticket, error) {
	st, err := app.OpenStore(ctx, db)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.List(ctx, f)
}

// loadDir reads the ticket files written by the CLI's -save option.
func loadDir(dir string, f store.Filter) ([]ticket.Ticket, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "ticket_*.json"))
	if err != nil {
		return nil, err
	}
	var out []ticket.Ticket
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		var t ticket.Ticket
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func buildReport(tickets []ticket.Ticket, th ticket.Thresholds, limit int) report {
	return report{
		Summary:     stats.Summarize(tickets, th),
		HighDFTerms: topHighDF(tickets, limit),
	}
}

// topHighDF ranks the cleaned-description terms by the share of tickets
// containing them. Terms near 100% carry no signal and are stoplist
// candidates.
func topHighDF(tickets []ticket.Ticket, limit int) []highDFEntry {
	df := make(map[string]int)
	for _, t := range tickets {
		seen := make(map[string]bool)
		for _, term := range strings.Fields(t.CleanedDescription) {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	out := make([]highDFEntry, 0, len(df))
	for term, n := range df {
		out = append(out, highDFEntry{
			Term:      term,
			Docs:      n,
			DFPercent: 100 * float64(n) / float64(len(tickets)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Docs != out[j].Docs {
			return out[i].Docs > out[j].Docs
		}
		return out[i].Term < out[j].Term
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
