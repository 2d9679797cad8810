package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/gateway-admin/pkg/bundle"
)

// preferencesWatchCmd represents the preferences watch command
var preferencesWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a bundle file and load it whenever it changes",
	Long: `Load a bundle, then watch it and load it again whenever it is written.

The directory holding the file is watched, so editors that replace the
file on save are handled.

Example:
  gatewayctl preferences watch /run/gateway-admin/gateway.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := watchBundle(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch bundle: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	preferencesCmd.AddCommand(preferencesWatchCmd)
}

func watchBundle(filename string) error {
	loader, err := newBundleLoader()
	if err != nil {
		return err
	}

	path, err := filepath.Abs(filename)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	reload(loader, path)
	fmt.Printf("Watching %s for changes\n", path)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				reload(loader, path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Error("watcher error")
		case <-sigChan:
			fmt.Println("\nShutting down...")
			return nil
		}
	}
}

func reload(loader *bundle.Loader, path string) {
	fmt.Printf("[%s] loading %s\n", time.Now().Format(time.RFC3339), path)
	result, err := loadBundleFile(loader, path)
	if err != nil {
		log.WithError(err).WithField("file", path).Error("bundle load failed")
		return
	}
	log.WithFields(log.Fields{
		"file":        path,
		"preferences": result.Preferences,
		"grants":      result.GrantsCreated + result.GrantsUpdated,
	}).Info("bundle loaded")
}
