package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/alaa-eddine/tokenloom"
	"github.com/alaa-eddine/tokenloom/bus"
)

// newWatchCommand watches a single growing file (e.g. a log being appended
// to) and feeds newly-written bytes into the parser as they land — the same
// fsnotify dependency glow uses to watch its stash directory, repurposed
// here to watch one file instead of a directory of documents.
func newWatchCommand(cfgFile *string) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Tail a growing file, feeding new bytes into the parser as they arrive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			cliCfg, err := loadCLIConfig(*cfgFile)
			if err != nil {
				return err
			}
			parserCfg, err := cliCfg.toParserConfig()
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("tokenloom: open %s: %w", path, err)
			}
			defer f.Close()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("tokenloom: create watcher: %w", err)
			}
			defer watcher.Close()
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("tokenloom: watch %s: %w", path, err)
			}

			b := bus.New(bus.Config{EmitDelay: parserCfg.EmitDelay})
			defer b.Dispose()
			r := newRenderer(cmd.OutOrStdout(), width)
			if err := b.Register(r); err != nil {
				return err
			}

			p, err := tokenloom.New(parserCfg, b)
			if err != nil {
				return err
			}

			drain := func() error {
				buf := make([]byte, feedChunkSize)
				for {
					n, readErr := f.Read(buf)
					if n > 0 {
						p.Feed(string(buf[:n]))
					}
					if readErr == io.EOF {
						return nil
					}
					if readErr != nil {
						return readErr
					}
				}
			}
			if err := drain(); err != nil {
				return fmt.Errorf("tokenloom: read %s: %w", path, err)
			}

			for {
				select {
				case ev, ok := <-watcher.Events:
					if !ok {
						p.Flush()
						return nil
					}
					if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
						if err := drain(); err != nil {
							return fmt.Errorf("tokenloom: read %s: %w", path, err)
						}
					}
					if ev.Op&fsnotify.Remove != 0 {
						p.Flush()
						return nil
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						p.Flush()
						return nil
					}
					return fmt.Errorf("tokenloom: watcher error: %w", err)
				}
			}
		},
	}

	cmd.Flags().IntVar(&width, "width", 80, "word-wrap width for rendered plain text")
	return cmd
}
