package cmd

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/user/clipedit-cli/config"
	"github.com/user/clipedit-cli/db"
	"github.com/user/clipedit-cli/deps"
)

var Version = "0.1.0"

// configPath is the --config flag; empty means config.Path().
var configPath string

var rootCmd = &cobra.Command{
	Use:   "clipedit",
	Short: "A terminal editor for non-destructive video clips",
	Long: `clipedit is a terminal tool for cutting clips out of video files
without re-encoding them. Clips are stored in SQLite as edits of a source:
a trim range, a playback speed and a crop rectangle. mpv previews the result.

Features:
  - Trim, speed up or slow down and crop clips in an interactive editor
  - Scrub the timeline and drag crop handles with the mouse
  - Split and duplicate clips
  - Import and export clip records as JSON`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("clipedit version %s\n", Version)
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  `Check that the required system dependencies (mpv, ffprobe) are installed, that the config is valid and that the clip database opens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Checking dependencies...")
		fmt.Println()

		allGood := true

		_, cfg, err := loadConfig()
		if err != nil {
			fmt.Printf("✗ config: %v\n", err)
			cfg = config.Default()
			allGood = false
		} else {
			fmt.Printf("✓ config: OK (%s)\n", configFile())
		}

		missing := map[string]error{}
		for _, err := range deps.CheckAll(cfg.Mpv.Binary) {
			if de, ok := err.(*deps.DependencyError); ok {
				missing[de.Name] = de
			}
		}
		for _, name := range []string{"mpv", "ffprobe"} {
			if err, ok := missing[name]; ok {
				fmt.Printf("✗ %s: NOT FOUND\n", name)
				fmt.Printf("  %v\n", err)
				allGood = false
			} else {
				fmt.Printf("✓ %s: OK\n", name)
			}
		}

		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			fmt.Printf("✗ database: %v\n", err)
			allGood = false
		} else {
			version, err := db.SchemaVersion(database)
			database.Close()
			if err != nil {
				fmt.Printf("✗ database: %v\n", err)
				allGood = false
			} else {
				fmt.Printf("✓ database: OK (schema v%d%s)\n", version, databaseSize(cfg.Database.Path))
			}
		}

		fmt.Println()
		if !allGood {
			return fmt.Errorf("some checks failed")
		}
		fmt.Println("All dependencies are installed!")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/clipedit/config.toml)")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)
}

func configFile() string {
	if configPath != "" {
		return configPath
	}
	return config.Path()
}

// loadConfig reads the config named by --config.
func loadConfig() (*config.Loader, *config.Config, error) {
	loader := config.NewLoader(configPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return loader, cfg, nil
}

// openDatabase loads the config and opens the clip database it names.
func openDatabase() (*sql.DB, error) {
	_, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return db.Open(cfg.Database.Path)
}

// databaseSize returns ", <size>" for the database file, or "" if it
// cannot be read.
func databaseSize(path string) string {
	if path == "" {
		p, err := db.DefaultPath()
		if err != nil {
			return ""
		}
		path = p
	}
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return ", " + humanize.Bytes(uint64(info.Size()))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
