package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cognicore/ticketai/internal/app"
	"github.com/cognicore/ticketai/internal/logging"
	"github.com/cognicore/ticketai/pkg/ticketai"
	"github.com/cognicore/ticketai/pkg/ticketai/config"
	"github.com/cognicore/ticketai/pkg/ticketai/intake"
	"github.com/cognicore/ticketai/pkg/ticketai/ticket"
)

func main() {
	var (
		configPath = flag.String("config", "configs/config.yml", "Config file")
		text       = flag.String("text", "", "One-shot description (non-interactive mode)")
		saveDir    = flag.String("save", "", "Write each ticket as JSON into this directory")
		memory     = flag.Bool("memory", false, "Keep tickets in memory instead of the configured database")
		verbose    = flag.Bool("v", false, "Development logging")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	if *memory {
		cfg.Database.Type = "memory"
	}
	mode := "production"
	if *verbose {
		mode = "development"
	}
	logger := logging.Must(mode)
	defer logger.Sync()

	ctx := context.Background()
	engine, cleanup, err := app.BuildEngine(ctx, cfg, logger)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	s := session{engine: engine, bounds: cfg.Validation, saveDir: *saveDir, out: os.Stdout}

	// One-shot mode
	if *text != "" {
		if err := s.process(ctx, *text); err != nil {
			fatal(err)
		}
		return
	}

	// Interactive mode
	fmt.Println("===========================================")
	fmt.Println("  Ticket CLI")
	fmt.Println("  Describe an IT issue to open a ticket")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Type a description (Ctrl+D to exit):")
	fmt.Println()

	s.loop(ctx, os.Stdin)

	fmt.Println("\nGoodbye!")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

type session struct {
	engine  *ticketai.Engine
	bounds  intake.Bounds
	saveDir string
	out     io.Writer
}

func (s session) loop(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := s.process(ctx, line); err != nil {
			fmt.Fprintln(s.out, "Error:", intake.Message(err))
		}
	}
}

// process validates one description, creates the ticket and prints it.
func (s session) process(ctx context.Context, description string) error {
	if err := intake.Validate(description, s.bounds); err != nil {
		return err
	}
	t, err := s.engine.CreateTicket(ctx, description)
	if err != nil {
		return err
	}

	data, err := t.JSON(true)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "\n--- Ticket %s: %s ---\n", t.ID, t.Title)
	fmt.Fprintln(s.out, string(data))

	th := s.engine.Thresholds()
	fmt.Fprintln(s.out, "\nConfidence:")
	for _, c := range []struct {
		name  string
		label string
		conf  float64
	}{
		{"Category", t.Category, t.CategoryConfidence},
		{"Priority", t.Priority, t.PriorityConfidence},
		{"Overall", "", t.AvgConfidence},
	} {
		band := ticket.ConfidenceBand(c.conf, th)
		fmt.Fprintf(s.out, "  %-9s %-10s %8s  [%s/%s]\n", c.name, c.label, ticket.FormatPercent(c.conf), band, band.Color())
	}
	if ticket.NeedsReview(t.AvgConfidence, th) {
		fmt.Fprintln(s.out, "  Low confidence: flag for manual review")
	}

	fmt.Fprintln(s.out, "\nEntities:")
	fmt.Fprintln(s.out, t.Entities.Summary())

	if s.saveDir != "" {
		path, err := ticket.WriteFile(s.saveDir, t, t.CreatedAt.Time())
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, "\nSaved:", path)
	}
	fmt.Fprintln(s.out)
	return nil
}
