// SteamLibrarian
// Copyright (c) 2026 The SteamLibrarian Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of SteamLibrarian.
//
// SteamLibrarian is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SteamLibrarian is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with SteamLibrarian.  If not, see <http://www.gnu.org/licenses/>.

// SteamLibrarian launches a Steam game and blocks until the session has
// verifiably started and ended, printing a usage summary on exit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/emilwojcik93/SteamLibrarian/pkg/config"
	"github.com/emilwojcik93/SteamLibrarian/pkg/helpers"
	"github.com/emilwojcik93/SteamLibrarian/pkg/session"
	"github.com/emilwojcik93/SteamLibrarian/pkg/steam/candidates"
	"github.com/emilwojcik93/SteamLibrarian/pkg/steam/launch"
	"github.com/emilwojcik93/SteamLibrarian/pkg/steam/library"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	listGames := flag.Bool("list", false, "list installed games and exit")
	appID := flag.Int("appid", 0, "appID of the game to launch and watch")
	steamDir := flag.String("steam-dir", "", "Steam installation path (overrides config and auto-detection)")
	noLaunch := flag.Bool("no-launch", false, "skip launching; only watch for start and exit")
	launchArgs := flag.String("launch-args", "", "extra launch arguments passed through the run URI")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.NewConfig(afero.NewOsFs(), config.DefaultCfgPath(), config.BaseDefaults)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if *debug {
		cfg.SetDebugLogging(true)
	}

	if err := helpers.InitLogging(config.DefaultLogDir(), []io.Writer{
		zerolog.ConsoleWriter{Out: os.Stderr},
	}); err != nil {
		return fmt.Errorf("error initializing logging: %w", err)
	}
	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	root := *steamDir
	if root == "" {
		root = library.FindSteamDir(cfg)
	}
	if root == "" {
		return errors.New("steam installation not found, use -steam-dir or configure steam.install_dir")
	}

	games, err := library.Discover(root)
	if err != nil {
		return fmt.Errorf("error scanning Steam library: %w", err)
	}

	if *listGames {
		for _, g := range games {
			fmt.Printf("%8d  %s\n", g.AppID, g.Name)
		}
		return nil
	}

	if *appID <= 0 {
		return errors.New("an appID is required, use -appid (or -list to see installed games)")
	}

	game, found := findGame(games, *appID)
	if !found {
		return fmt.Errorf("appID %d not found in Steam library under %s", *appID, root)
	}
	log.Info().Int("appID", game.AppID).Str("name", game.Name).Msg("selected game")

	cands := rankCandidates(cfg, game)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	procs := session.NewProcSource()
	flags := session.NewRunFlagChecker(root)

	// The baseline snapshot has to precede the launch request, otherwise
	// pre-existing windows and processes would count as start signals.
	initial, err := procs.Snapshot()
	if err != nil {
		return fmt.Errorf("error capturing baseline process snapshot: %w", err)
	}

	if !*noLaunch {
		launcher := launch.NewLauncher(launch.Options{
			Args:       splitArgs(*launchArgs),
			UseXdgOpen: true,
		})
		if err := launcher.Launch(ctx, *appID); err != nil {
			return err
		}
	}

	detector := session.NewDetector(procs, flags, session.DetectorOptions{
		Timeout:      cfg.DetectionTimeout(),
		PollInterval: cfg.DetectionPollInterval(),
	})
	result, err := detector.DetectStart(ctx, *appID, cands, initial)
	if err != nil {
		return fmt.Errorf("detection aborted: %w", err)
	}
	if result.State == session.StateTimedOut {
		log.Warn().Int("appID", *appID).Msg("game start not confirmed, not monitoring")
		fmt.Printf("No start signal for appID %d within %s.\n", *appID, cfg.DetectionTimeout())
		return nil
	}

	monitor := session.NewMonitor(procs, flags, session.MonitorOptions{
		PollInterval:     cfg.MonitorPollInterval(),
		SnapshotInterval: cfg.MonitorSnapshotInterval(),
	})
	summary, err := monitor.MonitorUntilExit(ctx, result)
	if err != nil {
		return fmt.Errorf("monitoring aborted: %w", err)
	}

	printSummary(game, summary)
	return nil
}

func findGame(games []library.Game, appID int) (library.Game, bool) {
	for _, g := range games {
		if g.AppID == appID {
			return g, true
		}
	}
	return library.Game{}, false
}

// rankCandidates is best-effort: a game with no usable install path can
// still be detected by the run flag or the window heuristic. Executables
// the manifest declares are seeded ahead of the size ranking so the
// detector tries the known binary first.
func rankCandidates(cfg *config.Instance, game library.Game) []candidates.Candidate {
	if game.InstallPath == "" && len(game.LaunchExecutables) == 0 {
		log.Warn().Int("appID", game.AppID).Msg("no install path in manifest, detection has no executable candidates")
		return nil
	}

	var ranked []candidates.Candidate
	if game.InstallPath != "" {
		var err error
		ranked, err = candidates.Rank(game.InstallPath, candidates.Options{
			MaxDepth:     cfg.CandidateMaxDepth(),
			Limit:        cfg.CandidateDetectionLimit(),
			ExtraExclude: cfg.CandidateExclude(),
		})
		if err != nil {
			log.Warn().Err(err).Str("installPath", game.InstallPath).Msg("candidate ranking failed")
		}
	}
	return candidates.SeedDeclared(game.InstallPath, game.LaunchExecutables, ranked)
}

func splitArgs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Fields(raw)
}

func printSummary(game library.Game, summary session.Summary) {
	fmt.Printf("Session for %s (appID %d) ended after %s.\n",
		game.Name, game.AppID, summary.Duration.Round(time.Second))
	for _, p := range summary.Processes {
		name := p.Name
		if name == "" {
			name = "(unknown)"
		}
		partial := ""
		if p.Partial {
			partial = " [partial]"
		}
		fmt.Printf("  %s (pid %d): runtime %s, peak memory %.1f MiB, cpu %s%s\n",
			name, p.PID, p.Runtime.Round(time.Second),
			float64(p.PeakWorkingSetBytes)/(1024*1024),
			p.CPUTime.Round(time.Second), partial)
	}
}
