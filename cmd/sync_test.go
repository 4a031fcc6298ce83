package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/plsync/internal/services"
	"github.com/desertthunder/plsync/internal/shared"
	tu "github.com/desertthunder/plsync/internal/testing"
)

const scenarioTSV = "A1\tSong A\nA2\tSong B\n\nA3\tSong C\nA3\tSong C again\nA4\tSong D\n"

func TestSync(t *testing.T) {
	t.Run("adds missing videos and reports failures", func(t *testing.T) {
		fake := tu.NewFakePlaylist("A1")
		fake.InsertErrs["A3"] = &services.APIError{Code: 404, Message: "Video not found."}
		env := newTestEnv(t, fake)
		tsv := tu.WriteFile(t, env.path("videos.tsv"), scenarioTSV)

		if err := env.run(t, "sync", "--playlist", "PL1", "--tsv", tsv); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := strings.Join(fake.Items, ","); got != "A1,A2,A4" {
			t.Errorf("expected playlist A1,A2,A4, got %s", got)
		}

		output := env.out.String()
		for _, want := range []string{
			"Reading TSV: " + tsv,
			"Loaded 5 rows.",
			"Destination already contains 1 videos.",
			"3 videos to add after de-duplication.",
			"Done. Successfully added: 2",
			"Failures: 1 (see " + env.config.Sync.FailureLog + ")",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}

		log := tu.MustReadFile(t, env.config.Sync.FailureLog)
		if log != "A3\tHTTP 404 Video not found.\n" {
			t.Errorf("unexpected failure log %q", log)
		}

		if !strings.Contains(env.logs.String(), "failed to add video") {
			t.Errorf("expected item failure to be logged, got %q", env.logs.String())
		}

		db, runs, err := env.runner.openRuns()
		if err != nil {
			t.Fatalf("failed to open history: %v", err)
		}
		defer db.Close()

		list, err := runs.List(nil)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 recorded run, got %d", len(list))
		}
		run := list[0]
		if run.PlaylistID != "PL1" || run.Added != 2 || run.Failed != 1 || run.Planned != 3 {
			t.Errorf("unexpected run record %+v", run)
		}
	})

	t.Run("clean run writes no failure log", func(t *testing.T) {
		env := newTestEnv(t, tu.NewFakePlaylist())
		tsv := tu.WriteFile(t, env.path("videos.tsv"), "V1\tOne\nV2\tTwo\n")

		if err := env.run(t, "sync", "--playlist", "PL1", "--tsv", tsv); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(env.out.String(), "Failures:") {
			t.Errorf("expected no failure line, got %q", env.out.String())
		}
		tu.AssertNoFile(t, env.config.Sync.FailureLog)
	})

	t.Run("second run adds nothing", func(t *testing.T) {
		fake := tu.NewFakePlaylist()
		env := newTestEnv(t, fake)
		tsv := tu.WriteFile(t, env.path("videos.tsv"), "V1\tOne\nV2\tTwo\n")

		for range 2 {
			if err := env.run(t, "sync", "--playlist", "PL1", "--tsv", tsv); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		if len(fake.Attempts()) != 2 {
			t.Errorf("expected 2 insert attempts across both runs, got %v", fake.Attempts())
		}
		if !strings.Contains(env.out.String(), "0 videos to add after de-duplication.") {
			t.Errorf("expected second run to plan nothing, got:\n%s", env.out.String())
		}
	})

	t.Run("fetch failure aborts without report", func(t *testing.T) {
		fake := tu.NewFakePlaylist(tu.SequentialIDs("E", 60)...)
		fake.FailPage = 2
		fake.ListErr = errors.New("backend error")
		env := newTestEnv(t, fake)
		tsv := tu.WriteFile(t, env.path("videos.tsv"), "V1\tOne\n")

		err := env.run(t, "sync", "--playlist", "PL1", "--tsv", tsv)
		if !errors.Is(err, shared.ErrFetchExisting) {
			t.Fatalf("expected ErrFetchExisting, got %v", err)
		}

		if strings.Contains(env.out.String(), "Done.") {
			t.Errorf("expected no summary, got %q", env.out.String())
		}
		if len(fake.Attempts()) != 0 {
			t.Errorf("expected no inserts, got %v", fake.Attempts())
		}
		tu.AssertNoFile(t, env.config.Sync.FailureLog)
		tu.AssertNoFile(t, env.config.Database.Path)
	})

	t.Run("missing TSV fails before connecting", func(t *testing.T) {
		env := newTestEnv(t, tu.NewFakePlaylist())

		err := env.run(t, "sync", "--playlist", "PL1", "--tsv", env.path("missing.tsv"))
		if !errors.Is(err, shared.ErrInputFile) {
			t.Fatalf("expected ErrInputFile, got %v", err)
		}
		if env.connected != 0 {
			t.Errorf("expected no connection, got %d", env.connected)
		}
	})

	t.Run("required flags", func(t *testing.T) {
		env := newTestEnv(t, tu.NewFakePlaylist())
		if err := env.run(t, "sync", "--tsv", env.path("videos.tsv")); err == nil {
			t.Error("expected error without --playlist")
		}
		if env.connected != 0 {
			t.Errorf("expected no connection, got %d", env.connected)
		}
	})

	t.Run("daily limit flag overrides config", func(t *testing.T) {
		fake := tu.NewFakePlaylist()
		env := newTestEnv(t, fake)
		tsv := tu.WriteFile(t, env.path("videos.tsv"), "V1\tOne\nV2\tTwo\nV3\tThree\n")

		if err := env.run(t, "sync", "--playlist", "PL1", "--tsv", tsv, "--daily-limit", "1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(fake.Attempts()) != 1 {
			t.Errorf("expected 1 attempt, got %v", fake.Attempts())
		}
		if !strings.Contains(env.out.String(), "Reached daily limit of 1.") {
			t.Errorf("expected limit notice, got:\n%s", env.out.String())
		}
	})

	t.Run("config daily limit applies without flag", func(t *testing.T) {
		fake := tu.NewFakePlaylist()
		env := newTestEnv(t, fake)
		env.config.Sync.DailyLimit = 2
		tsv := tu.WriteFile(t, env.path("videos.tsv"), "V1\tOne\nV2\tTwo\nV3\tThree\n")

		if err := env.run(t, "sync", "--playlist", "PL1", "--tsv", tsv); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fake.Attempts()) != 2 {
			t.Errorf("expected 2 attempts, got %v", fake.Attempts())
		}
	})

	t.Run("invalid flag values", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
		}{
			{"negative limit", []string{"--daily-limit=-1"}},
			{"negative sleep", []string{"--sleep=-0.5"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				env := newTestEnv(t, tu.NewFakePlaylist())
				tsv := tu.WriteFile(t, env.path("videos.tsv"), "V1\tOne\n")
				args := append([]string{"sync", "--playlist", "PL1", "--tsv", tsv}, tt.args...)

				if err := env.run(t, args...); !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				if env.connected != 0 {
					t.Errorf("expected no connection, got %d", env.connected)
				}
			})
		}
	})

	t.Run("empty failure log path is rejected", func(t *testing.T) {
		env := newTestEnv(t, tu.NewFakePlaylist())
		env.config.Sync.FailureLog = ""
		tsv := tu.WriteFile(t, env.path("videos.tsv"), "V1\tOne\n")

		err := env.run(t, "sync", "--playlist", "PL1", "--tsv", tsv)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if env.connected != 0 {
			t.Errorf("expected no connection, got %d", env.connected)
		}

		if err := env.run(t, "sync", "--playlist", "PL1", "--tsv", tsv, "--failure-log="); err == nil {
			t.Error("expected error for an empty --failure-log value")
		}
		if env.connected != 0 {
			t.Errorf("expected no connection, got %d", env.connected)
		}
	})

	t.Run("no-dedupe attempts repeats", func(t *testing.T) {
		fake := tu.NewFakePlaylist()
		fake.InsertErrs["A3"] = errors.New("transient")
		env := newTestEnv(t, fake)
		tsv := tu.WriteFile(t, env.path("videos.tsv"), scenarioTSV)

		if err := env.run(t, "sync", "--playlist", "PL1", "--tsv", tsv, "--no-dedupe"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := strings.Join(fake.Attempts(), ","); got != "A1,A2,A3,A3,A4" {
			t.Errorf("expected repeated attempt for A3, got %s", got)
		}
		log := tu.MustReadFile(t, env.config.Sync.FailureLog)
		if log != "A3\ttransient\nA3\ttransient\n" {
			t.Errorf("unexpected failure log %q", log)
		}
	})

	t.Run("custom failure log path", func(t *testing.T) {
		fake := tu.NewFakePlaylist()
		fake.InsertErrs["V1"] = errors.New("boom")
		env := newTestEnv(t, fake)
		tsv := tu.WriteFile(t, env.path("videos.tsv"), "V1\tOne\n")
		logPath := env.path("retry.log")

		if err := env.run(t, "sync", "--playlist", "PL1", "--tsv", tsv, "--failure-log", logPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(env.out.String(), "Failures: 1 (see "+logPath+")") {
			t.Errorf("expected custom log path in summary, got:\n%s", env.out.String())
		}
		tu.AssertFileExists(t, logPath)
		tu.AssertNoFile(t, env.config.Sync.FailureLog)
	})

	t.Run("failure log write error fails the command", func(t *testing.T) {
		fake := tu.NewFakePlaylist()
		fake.InsertErrs["V1"] = errors.New("boom")
		env := newTestEnv(t, fake)
		tsv := tu.WriteFile(t, env.path("videos.tsv"), "V1\tOne\n")
		logPath := env.path("missing-dir/failures.log")

		if err := env.run(t, "sync", "--playlist", "PL1", "--tsv", tsv, "--failure-log", logPath); err == nil {
			t.Fatal("expected error writing failure log")
		}
		if !strings.Contains(env.out.String(), "Done. Successfully added: 0") {
			t.Errorf("expected summary before the error, got:\n%s", env.out.String())
		}
		tu.AssertFileExists(t, env.config.Database.Path)
	})

	t.Run("no-history skips the database", func(t *testing.T) {
		env := newTestEnv(t, tu.NewFakePlaylist())
		tsv := tu.WriteFile(t, env.path("videos.tsv"), "V1\tOne\n")

		if err := env.run(t, "sync", "--playlist", "PL1", "--tsv", tsv, "--no-history"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertNoFile(t, env.config.Database.Path)
	})

	t.Run("history errors do not fail the run", func(t *testing.T) {
		env := newTestEnv(t, tu.NewFakePlaylist())
		blocker := tu.WriteFile(t, env.path("blocker"), "")
		env.config.Database.Path = blocker + "/plsync.db"
		tsv := tu.WriteFile(t, env.path("videos.tsv"), "V1\tOne\n")

		if err := env.run(t, "sync", "--playlist", "PL1", "--tsv", tsv); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(env.logs.String(), "run history unavailable") {
			t.Errorf("expected history warning, got %q", env.logs.String())
		}
	})
}
