package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/user/clipedit-cli/clip"
	"github.com/user/clipedit-cli/db"
	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/logging"
	"github.com/user/clipedit-cli/pkg/crop"
	"github.com/user/clipedit-cli/pkg/timemap"
	"github.com/user/clipedit-cli/pkg/timeutil"
)

var clipCmd = &cobra.Command{
	Use:   "clip",
	Short: "Manage clips",
	Long:  `Create, list, edit and exchange clip records without opening the editor.`,
}

var clipAddCmd = &cobra.Command{
	Use:   "add <video-file | url>",
	Short: "Add a clip of a video",
	Long:  `Add a clip of a video file or URL. Times are source times in MM:SS, H:MM:SS or seconds format.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, ok, err := sourceArg(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("video file not found: %s", args[0])
		}

		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		}
		duration, _ := cmd.Flags().GetFloat64("duration")
		c := clip.New(source, title, duration)

		if s, _ := cmd.Flags().GetString("start"); s != "" {
			v, err := timeutil.ParseTimeToSeconds(s)
			if err != nil {
				return fmt.Errorf("invalid start time: %w", err)
			}
			c.TrimStart = timemap.Float(v)
		}
		if s, _ := cmd.Flags().GetString("end"); s != "" {
			v, err := timeutil.ParseTimeToSeconds(s)
			if err != nil {
				return fmt.Errorf("invalid end time: %w", err)
			}
			c.TrimEnd = timemap.Float(v)
		}
		if cmd.Flags().Changed("speed") {
			rate, _ := cmd.Flags().GetFloat64("speed")
			c.PlaybackRate = timemap.Float(rate)
		}
		if err := c.Check(); err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.InsertClip(database, c); err != nil {
			return fmt.Errorf("failed to insert clip: %w", err)
		}
		fmt.Printf("Clip added: %s (%s)\n", c.ID, c.DisplayName())
		return nil
	},
}

var clipListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clips",
	Long:  `Display clips as a table in creation order, optionally only those cut from one source.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		var rows []db.ClipRow
		if source, _ := cmd.Flags().GetString("source"); source != "" {
			if abs, ok, err := sourceArg(source); err == nil && ok {
				source = abs
			}
			rows, err = db.SelectClipsBySource(database, source)
		} else {
			rows, err = db.SelectClips(database)
		}
		if err != nil {
			return fmt.Errorf("failed to query clips: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTitle\tSource\tRange\tSpeed\tLength\tCrop")
		fmt.Fprintln(w, "--\t-----\t------\t-----\t-----\t------\t----")
		for _, r := range rows {
			m := r.Mapper()
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				shortClipID(r.ID),
				truncate(r.DisplayName(), 30),
				truncate(filepath.Base(r.SourceURL), 30),
				rangeText(r.Clip),
				formatRate(r.Rate()),
				timeutil.FormatClock(m.EffectiveDuration()),
				cropText(r.Crop),
			)
		}
		w.Flush()

		if len(rows) == 0 {
			fmt.Println("\nNo clips found.")
		} else {
			fmt.Printf("\n%d clip(s) found.\n", len(rows))
		}
		return nil
	},
}

var clipShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one clip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		row, err := loadClip(database, args[0])
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := clip.Encode([]clip.Clip{row.Clip})
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		}

		m := row.Mapper()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID:\t%s\n", row.ID)
		fmt.Fprintf(w, "Title:\t%s\n", row.DisplayName())
		fmt.Fprintf(w, "Source:\t%s\n", row.SourceURL)
		if row.Duration > 0 {
			fmt.Fprintf(w, "Source length:\t%s\n", timeutil.FormatPrecise(row.Duration))
		} else {
			fmt.Fprintf(w, "Source length:\tunknown\n")
		}
		fmt.Fprintf(w, "Range:\t%s\n", rangeText(row.Clip))
		fmt.Fprintf(w, "Speed:\t%s\n", formatRate(row.Rate()))
		fmt.Fprintf(w, "Length:\t%s\n", timeutil.FormatPrecise(m.EffectiveDuration()))
		fmt.Fprintf(w, "Crop:\t%s\n", cropText(row.Crop))
		fmt.Fprintf(w, "Created:\t%s (%s)\n", row.CreatedAt.Local().Format("2006-01-02 15:04"), humanize.Time(row.CreatedAt))
		if row.SavedAt != nil {
			fmt.Fprintf(w, "Saved:\t%s (%s)\n", row.SavedAt.Local().Format("2006-01-02 15:04"), humanize.Time(*row.SavedAt))
		} else {
			fmt.Fprintf(w, "Saved:\tnever\n")
		}
		return w.Flush()
	},
}

var clipRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a clip",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		id, err := db.ResolveClipID(database, args[0])
		if err != nil {
			return err
		}
		if err := db.DeleteClip(database, id); err != nil {
			return fmt.Errorf("failed to delete clip: %w", err)
		}
		fmt.Printf("Clip deleted: %s\n", shortClipID(id))
		return nil
	},
}

var clipImportCmd = &cobra.Command{
	Use:   "import <file | ->",
	Short: "Import clip records from JSON",
	Long:  `Import one clip object or an array of clips. Every record is validated against the clip schema before anything is written.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read clips: %w", err)
		}

		clips, err := clip.Decode(data)
		if err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.InsertClips(database, clips); err != nil {
			return fmt.Errorf("failed to import clips: %w", err)
		}
		fmt.Printf("%d clip(s) imported.\n", len(clips))
		return nil
	},
}

var clipExportCmd = &cobra.Command{
	Use:   "export [id...]",
	Short: "Export clip records as JSON",
	Long: `Export clips as JSON, all of them when no IDs are given.
By default a single array is written to stdout or --output. With --dir each
clip is written to its own file named after its start time and title.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		var clips []clip.Clip
		if len(args) == 0 {
			rows, err := db.SelectClips(database)
			if err != nil {
				return fmt.Errorf("failed to query clips: %w", err)
			}
			for _, r := range rows {
				clips = append(clips, r.Clip)
			}
		} else {
			for _, arg := range args {
				row, err := loadClip(database, arg)
				if err != nil {
					return err
				}
				clips = append(clips, row.Clip)
			}
		}

		if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
			return exportDir(dir, clips)
		}

		data, err := clip.Encode(clips)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		if output == "" || output == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		fmt.Fprintf(os.Stderr, "%d clip(s) exported to %s\n", len(clips), output)
		return nil
	},
}

func exportDir(dir string, clips []clip.Clip) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	for _, c := range clips {
		data, err := clip.Encode([]clip.Clip{c})
		if err != nil {
			return err
		}
		path := clip.ExportPath(dir, c)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("✓ %s\n", path)
	}
	fmt.Printf("\n%d clip(s) exported.\n", len(clips))
	return nil
}

var clipTrimCmd = &cobra.Command{
	Use:   "trim <id> [start] [end]",
	Short: "Set the source range of a clip",
	Long:  `Set the trim range of a clip in source time. --reset restores the full source.`,
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		reset, _ := cmd.Flags().GetBool("reset")
		if !reset && len(args) != 3 {
			return fmt.Errorf("trim requires <id> <start> <end> or --reset")
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		row, err := loadClip(database, args[0])
		if err != nil {
			return err
		}
		c := row.Clone()

		if reset {
			c.TrimStart, c.TrimEnd = nil, nil
		} else {
			start, err := timeutil.ParseTimeToSeconds(args[1])
			if err != nil {
				return fmt.Errorf("invalid start time: %w", err)
			}
			end, err := timeutil.ParseTimeToSeconds(args[2])
			if err != nil {
				return fmt.Errorf("invalid end time: %w", err)
			}
			if end <= start {
				return fmt.Errorf("clip end time must be after start time")
			}
			c.TrimStart, c.TrimEnd = timemap.Float(start), timemap.Float(end)
		}
		if err := c.Check(); err != nil {
			return err
		}
		if err := db.UpdateClipTrim(database, c.ID, c.TrimStart, c.TrimEnd); err != nil {
			return fmt.Errorf("failed to trim clip: %w", err)
		}
		fmt.Printf("Clip %s: %s (%s)\n", shortClipID(c.ID), rangeText(c),
			timeutil.FormatPrecise(c.Mapper().EffectiveDuration()))
		return nil
	},
}

var clipSpeedCmd = &cobra.Command{
	Use:   "speed <id> [rate]",
	Short: "Show or set the playback speed of a clip",
	Long:  `Set the playback speed of a clip. Without a rate --cycle moves to the next of 0.5x, 0.75x, 1x, 1.25x, 1.5x and 2x.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cycle, _ := cmd.Flags().GetBool("cycle")
		var rate float64
		if len(args) == 2 {
			v, err := strconv.ParseFloat(strings.TrimSuffix(args[1], "x"), 64)
			if err != nil {
				return fmt.Errorf("invalid speed: %s", args[1])
			}
			rate = v
		}

		return editClip(args[0], func(s *editor.Session) error {
			switch {
			case len(args) == 2:
				return s.SetRate(rate)
			case cycle:
				_, err := s.CycleRate()
				return err
			}
			return nil
		}, func(st editor.State) {
			fmt.Printf("Clip %s: speed %s, length %s\n", shortClipID(st.ClipID),
				formatRate(st.Rate), timeutil.FormatPrecise(st.EffectiveDuration()))
		})
	},
}

var clipCropCmd = &cobra.Command{
	Use:   "crop <id> [x y width height]",
	Short: "Set the crop of a clip",
	Long: `Set the crop rectangle of a clip as fractions of the frame, e.g.
"crop abc123 0.1 0.1 0.8 0.8". Use --preset for a named crop or --reset for
the full frame. Values are clamped to a minimum size of 0.1.`,
	Args: cobra.RangeArgs(1, 5),
	RunE: func(cmd *cobra.Command, args []string) error {
		reset, _ := cmd.Flags().GetBool("reset")
		preset, _ := cmd.Flags().GetInt("preset")

		var r crop.Rect
		switch {
		case reset:
			r = crop.Full
		case preset != 0:
			if preset < 1 || preset > len(crop.Presets) {
				return fmt.Errorf("unknown preset: %d", preset)
			}
			r = crop.Presets[preset-1].Rect
		case len(args) == 5:
			var v [4]float64
			for i, a := range args[1:] {
				f, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("invalid crop value: %s", a)
				}
				v[i] = f
			}
			r = crop.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
		default:
			return fmt.Errorf("crop requires <id> <x> <y> <width> <height>, --preset or --reset")
		}

		return editClip(args[0], func(s *editor.Session) error {
			s.EnterCrop()
			s.SetTempCrop(r)
			s.CommitCrop()
			return nil
		}, func(st editor.State) {
			fmt.Printf("Clip %s: crop %s\n", shortClipID(st.ClipID), cropText(st.Crop))
		})
	},
}

var clipSplitCmd = &cobra.Command{
	Use:   "split <id> <time>",
	Short: "Split a clip in two",
	Long:  `Split a clip at a time measured from the start of the clip, after trim and speed. The first half keeps the clip's ID.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := timeutil.ParseTimeToSeconds(args[1])
		if err != nil {
			return fmt.Errorf("invalid split time: %w", err)
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		id, err := db.ResolveClipID(database, args[0])
		if err != nil {
			return err
		}
		second, err := db.SplitClip(database, id, at)
		if err != nil {
			return fmt.Errorf("failed to split clip: %w", err)
		}
		fmt.Printf("Clip split: %s and %s\n", shortClipID(id), shortClipID(second.ID))
		return nil
	},
}

var clipDupCmd = &cobra.Command{
	Use:   "dup <id>",
	Short: "Duplicate a clip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		id, err := db.ResolveClipID(database, args[0])
		if err != nil {
			return err
		}
		dup, err := db.DuplicateClip(database, id)
		if err != nil {
			return fmt.Errorf("failed to duplicate clip: %w", err)
		}
		fmt.Printf("Clip duplicated: %s (%s)\n", dup.ID, dup.DisplayName())
		return nil
	},
}

var clipProbeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Read missing source durations with ffprobe",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		p := &clip.Prober{
			Store:  db.ProbeStore{DB: database},
			Probe:  clip.FFProbe,
			Logger: logging.NewWriter(os.Stderr, slog.LevelInfo, "text").Logger,
		}
		n, err := p.RunOnce(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to probe clips: %w", err)
		}
		fmt.Printf("%d clip(s) probed.\n", n)
		return nil
	},
}

func init() {
	clipAddCmd.Flags().StringP("title", "t", "", "Clip title (default: file name)")
	clipAddCmd.Flags().StringP("start", "s", "", "Trim start in source time")
	clipAddCmd.Flags().StringP("end", "e", "", "Trim end in source time")
	clipAddCmd.Flags().Float64("speed", 1, "Playback speed")
	clipAddCmd.Flags().Float64("duration", 0, "Source duration in seconds (probed when 0)")

	clipListCmd.Flags().String("source", "", "Only list clips of this video file or URL")
	clipShowCmd.Flags().Bool("json", false, "Print the clip record as JSON")

	clipExportCmd.Flags().StringP("output", "o", "", "Write the JSON array to this file")
	clipExportCmd.Flags().String("dir", "", "Write one JSON file per clip to this directory")

	clipTrimCmd.Flags().Bool("reset", false, "Clear the trim")
	clipSpeedCmd.Flags().Bool("cycle", false, "Move to the next speed in the cycle")
	clipCropCmd.Flags().Bool("reset", false, "Clear the crop")
	clipCropCmd.Flags().Int("preset", 0, "Crop preset: 1 full, 2 80% center, 3 90% center")

	clipCmd.AddCommand(clipAddCmd)
	clipCmd.AddCommand(clipListCmd)
	clipCmd.AddCommand(clipShowCmd)
	clipCmd.AddCommand(clipRmCmd)
	clipCmd.AddCommand(clipImportCmd)
	clipCmd.AddCommand(clipExportCmd)
	clipCmd.AddCommand(clipTrimCmd)
	clipCmd.AddCommand(clipSpeedCmd)
	clipCmd.AddCommand(clipCropCmd)
	clipCmd.AddCommand(clipSplitCmd)
	clipCmd.AddCommand(clipDupCmd)
	clipCmd.AddCommand(clipProbeCmd)
	rootCmd.AddCommand(clipCmd)
}

// loadClip resolves an ID prefix and loads the clip.
func loadClip(database *sql.DB, arg string) (*db.ClipRow, error) {
	id, err := db.ResolveClipID(database, arg)
	if err != nil {
		return nil, err
	}
	return db.SelectClipByID(database, id)
}

// editClip opens an edit session on a stored clip, runs edit and closes the
// session without changing the stored speed. Writes go through the same
// collection the editor uses; a failed write is returned as an error.
func editClip(arg string, edit func(*editor.Session) error, report func(editor.State)) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	row, err := loadClip(database, arg)
	if err != nil {
		return err
	}

	collection := db.NewCollection(database, logging.Discard().Logger)
	session := editor.New(row.Clip, collection)
	if err := edit(session); err != nil {
		return err
	}
	if status := collection.TakeStatus(); strings.HasPrefix(status, "Failed") {
		return fmt.Errorf("%s", status)
	}
	report(session.State())
	return nil
}

func shortClipID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// rangeText formats the raw trim range. An unknown source length is shown
// as "end".
func rangeText(c clip.Clip) string {
	m := c.Mapper()
	end := "end"
	if c.TrimEnd != nil || c.Duration > 0 {
		end = timeutil.FormatPrecise(m.ActiveEnd())
	}
	return fmt.Sprintf("%s-%s", timeutil.FormatPrecise(m.ActiveStart()), end)
}

func formatRate(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64) + "x"
}

func cropText(r *crop.Rect) string {
	if r == nil {
		return "full"
	}
	return r.String()
}
