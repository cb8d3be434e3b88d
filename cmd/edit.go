package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/clipedit-cli/clip"
	"github.com/user/clipedit-cli/config"
	"github.com/user/clipedit-cli/db"
	"github.com/user/clipedit-cli/editor"
	"github.com/user/clipedit-cli/logging"
	"github.com/user/clipedit-cli/mpv"
	"github.com/user/clipedit-cli/playback"
	"github.com/user/clipedit-cli/tui"
)

var editCmd = &cobra.Command{
	Use:   "edit <clip-id | video-file>",
	Short: "Open a clip in the interactive editor",
	Long: `Open a clip in the interactive editor with mpv as the preview.

The argument is a clip ID (or a unique prefix of one) or a video file or URL.
A video file that is not a clip yet is added as a new clip first.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().String("title", "", "Title for a clip created from a video file")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	loader, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer loader.Close()

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Close()

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	title, _ := cmd.Flags().GetString("title")
	c, err := clipForArg(database, args[0], title)
	if err != nil {
		return err
	}

	updates := make(chan *config.Config, 1)
	loader.OnChange(func(next *config.Config) {
		select {
		case updates <- next:
		default:
		}
	})
	if err := loader.Watch(); err != nil {
		logger.Warn("config hot reload disabled", "error", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	prober := &clip.Prober{
		Store:    db.ProbeStore{DB: database},
		Probe:    clip.FFProbe,
		Interval: cfg.Playback.PollInterval,
		Logger:   logger.Logger,
	}
	prober.Start(ctx)

	process, err := mpv.LaunchMpv(mpv.LaunchOptions{
		Binary:     cfg.Mpv.Binary,
		SocketPath: cfg.Mpv.Socket,
	})
	if err != nil {
		return fmt.Errorf("failed to launch mpv: %w", err)
	}
	defer func() {
		if process.Process != nil {
			process.Process.Kill()
			process.Wait()
		}
	}()

	client := mpv.NewClient(cfg.Mpv.Socket)
	client.SetLogger(logger.Logger)
	connectCtx, cancelConnect := context.WithTimeout(ctx, cfg.Mpv.ConnectTimeout)
	err = client.ConnectWithRetry(connectCtx)
	cancelConnect()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Observe(); err != nil {
		return err
	}

	collection := db.NewCollection(database, logger.Logger)
	session := editor.New(*c, collection, editor.WithLogger(logger.Logger))
	defer recordDuration(session, collection)()

	adapter := playback.NewAdapter(session, mpv.NewSurface(client), logger.Logger)
	adapter.SetHysteresis(cfg.Playback.SeekHysteresis)
	defer adapter.Detach()

	if err := adapter.Open(c.SourceURL); err != nil {
		return err
	}
	logger.Info("editing clip", "clip", c.ID, "source", c.SourceURL)

	return tui.Run(tui.Options{
		Session:       session,
		Adapter:       adapter,
		Events:        client,
		Collection:    collection,
		Logger:        logger,
		ConfigUpdates: updates,
		Title:         c.DisplayName(),
		PollInterval:  cfg.Playback.PollInterval,
	})
}

// recordDuration stores the duration the player reports for the source, so
// clips added before it was probed get one. It returns the unsubscribe func.
func recordDuration(session *editor.Session, collection *db.Collection) func() {
	recorded := session.State().RawDuration
	return session.Subscribe(func(st editor.State) {
		if st.RawDuration > 0 && st.RawDuration != recorded {
			recorded = st.RawDuration
			collection.RecordDuration(st.ClipID, st.RawDuration)
		}
	})
}

// clipForArg loads the clip named by arg. A video file or URL that is not
// already a clip ID is added as a new clip.
func clipForArg(database *sql.DB, arg, title string) (*clip.Clip, error) {
	source, isSource, err := sourceArg(arg)
	if err != nil {
		return nil, err
	}
	if !isSource {
		id, err := db.ResolveClipID(database, arg)
		if err != nil {
			return nil, err
		}
		row, err := db.SelectClipByID(database, id)
		if err != nil {
			return nil, err
		}
		return &row.Clip, nil
	}

	if title == "" {
		title = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	c := clip.New(source, title, 0)
	if err := db.InsertClip(database, c); err != nil {
		return nil, fmt.Errorf("failed to add clip: %w", err)
	}
	fmt.Printf("Clip added: %s (%s)\n", c.ID[:8], c.Title)
	return &c, nil
}

// sourceArg reports whether arg names media rather than a clip. URLs are
// taken as is; files are resolved to an absolute path.
func sourceArg(arg string) (string, bool, error) {
	if strings.Contains(arg, "://") {
		return arg, true, nil
	}
	info, err := os.Stat(arg)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to access video file: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("path is a directory, not a video file: %s", arg)
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve path: %w", err)
	}
	return abs, true, nil
}
