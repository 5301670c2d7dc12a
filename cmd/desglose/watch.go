package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/desglose/desglose/internal/config"
)

// debounceDelay coalesces the bursts of write events most editors and
// print-to-PDF exporters emit while replacing a file.
const debounceDelay = 300 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <pdf>",
	Short: "Re-parse a budget PDF whenever it changes",
	Long: `Watch a budget PDF and re-run the parse every time the file is
rewritten, printing the resulting tree after each run.

Configuration is hot-reloaded: editing the config file re-parses with
the new settings without restarting the watch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}

		reparse := make(chan struct{}, 1)
		trigger := func() {
			select {
			case reparse <- struct{}{}:
			default:
			}
		}

		cm.OnChange(func(*config.Config) { trigger() })
		cm.WatchConfig()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		// Watch the directory, not the file: editors that replace via
		// rename would otherwise drop the watch after the first save.
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
		}

		run := func() {
			cfg := cm.Get()
			applyFlagOverrides(cfg)
			logger := newLogger(cfg.Verbose)

			res, warnings, err := runParse(cfg, path)
			if err != nil {
				logger.Error("parse failed", "file", path, "error", err)
				return
			}

			renderTree(os.Stdout, res)
			for _, w := range warnings {
				logger.Warn(w.Message, "code", string(w.Code), "page", w.Page, "line", w.Line)
			}
		}

		run()

		ctx := cmd.Context()
		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if ev.Name != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDelay, trigger)
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				newLogger(false).Error("watch error", "error", err)
			case <-reparse:
				run()
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
