package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/cognicore/ticketai/pkg/ticketai/classify"
	"github.com/cognicore/ticketai/pkg/ticketai/config"
	"github.com/cognicore/ticketai/pkg/ticketai/internalerr"
	"github.com/cognicore/ticketai/pkg/ticketai/model"
)

func writeModels(t *testing.T, dir string, categories []string) {
	t.Helper()
	texts := []string{"wifi network down", "vpn network slow", "password reset locked", "account locked password"}
	trainer := model.NewTrainer(model.DefaultTrainConfig())

	cat, err := trainer.TrainCategory(texts, categories)
	if err != nil {
		t.Fatal(err)
	}
	pri, err := trainer.TrainPriority(texts, []string{"High", "Medium", "Medium", "High"})
	if err != nil {
		t.Fatal(err)
	}
	files := classify.DefaultFiles()
	if err := model.Save(filepath.Join(dir, files.Category), cat.Artifact()); err != nil {
		t.Fatal(err)
	}
	if err := model.Save(filepath.Join(dir, files.Priority), pri.Artifact()); err != nil {
		t.Fatal(err)
	}
}

func testConfig(t *testing.T, dbType string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Models.Dir = dir
	cfg.Database.Type = dbType
	cfg.Database.Path = filepath.Join(dir, "db", "tickets.db")
	return cfg
}

func TestBuildEngine(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "sqlite")
	writeModels(t, cfg.Models.Dir, []string{"Network", "Network", "Access", "Access"})

	engine, cleanup, err := BuildEngine(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("BuildEngine failed: %v", err)
	}
	tk, err := engine.CreateTicket(ctx, "The wifi network is down again")
	if err != nil {
		t.Fatal(err)
	}
	if tk.ID != "INC-1001" {
		t.Errorf("first id = %s", tk.ID)
	}
	cleanup()

	// A restart continues after the stored tickets.
	engine, cleanup, err = BuildEngine(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()
	tk, err = engine.CreateTicket(ctx, "Account locked after password reset")
	if err != nil {
		t.Fatal(err)
	}
	if tk.ID != "INC-1002" {
		t.Errorf("id after restart = %s, want INC-1002", tk.ID)
	}
}

func TestBuildEngineMissingModels(t *testing.T) {
	_, _, err := BuildEngine(context.Background(), testConfig(t, "memory"), zap.NewNop())
	if !errors.Is(err, internalerr.ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestBuildEngineUnknownLabels(t *testing.T) {
	cfg := testConfig(t, "memory")
	writeModels(t, cfg.Models.Dir, []string{"Network", "Network", "Plumbing", "Plumbing"})

	_, _, err := BuildEngine(context.Background(), cfg, zap.NewNop())
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestOpenStoreUnknownType(t *testing.T) {
	if _, err := OpenStore(context.Background(), config.Database{Type: "postgres"}); err == nil {
		t.Error("expected error for unknown database type")
	}
}
