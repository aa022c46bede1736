// hopper is a small side-on platformer: collect coins, reach the goal, move
// on to the next level.
//
// Usage:
//
//	hopper                 - same as hopper play
//	hopper play            - open the game window
//	hopper levels          - print the level catalog
//
// Flags:
//
//	--levels <file>     - level catalog YAML (default: levels/levels.yaml, embedded copy if missing)
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/milk9111/hopper/common"
	"github.com/milk9111/hopper/levels"
	"github.com/spf13/cobra"
)

var (
	flagLevels   string
	flagLogLevel string
	flagDebug    bool
	flagTPS      int
	flagMonitor  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hopper",
	Short: "Hopper - a coin-collecting platformer",
	Long: `Hopper is a short platformer. Each level is a handful of platforms,
some coins and a goal. Reach the goal to move on; coins add to your score.

Controls:
  Left/Right, A/D   - Move
  Up, W, Space      - Jump
  Enter/Space       - Confirm on menus
  F12               - Quit`,
	SilenceUsage: true,
	RunE:         runPlay,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the game window",
	RunE:  runPlay,
}

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the levels in the catalog",
	RunE:  runLevels,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLevels, "levels", defaultLevelsPath(), "Path to the level catalog YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	for _, cmd := range []*cobra.Command{rootCmd, playCmd} {
		cmd.Flags().BoolVar(&flagDebug, "debug", false, "Draw physics shapes and hot-reload levels and prefabs")
		cmd.Flags().IntVar(&flagTPS, "tps", common.TicksPerSecond, "Simulation ticks per second")
		cmd.Flags().BoolVar(&flagMonitor, "monitor", false, "Open on the first monitor instead of the primary one")
	}

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(levelsCmd)
}

func defaultLevelsPath() string {
	return "levels/" + levels.DefaultFile
}

func newLogger() (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	if flagDebug && level > log.DebugLevel {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "hopper",
		Level:           level,
	})
	return logger, nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	if flagTPS <= 0 {
		return fmt.Errorf("--tps must be positive, got %d", flagTPS)
	}

	game, err := NewGame(Options{
		LevelsPath: flagLevels,
		Debug:      flagDebug,
		TPS:        flagTPS,
		Monitor:    flagMonitor,
	}, logger)
	if err != nil {
		return err
	}
	defer game.Close()

	if err := game.Run(); err != nil {
		logger.Error("game stopped", "err", err)
		return err
	}
	return nil
}

func runLevels(cmd *cobra.Command, args []string) error {
	catalog, err := levels.Open(flagLevels)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %-3s  %-16s  %9s  %5s  %s\n", "#", "Name", "Platforms", "Coins", "Goal")
	fmt.Fprintf(out, "  %-3s  %-16s  %9s  %5s  %s\n", "-", "----", "---------", "-----", "----")
	for i := 0; i < catalog.Len(); i++ {
		def, err := catalog.Get(i)
		if err != nil {
			return err
		}
		name := def.Name
		if name == "" {
			name = fmt.Sprintf("level %d", i+1)
		}
		fmt.Fprintf(out, "  %-3d  %-16s  %9d  %5d  (%g, %g)\n", i, name, len(def.Platforms), len(def.Coins), def.Goal.X, def.Goal.Y)
	}
	return nil
}
