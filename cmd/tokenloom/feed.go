package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/alaa-eddine/tokenloom"
	"github.com/alaa-eddine/tokenloom/addon/collector"
	"github.com/alaa-eddine/tokenloom/addon/highlight"
	"github.com/alaa-eddine/tokenloom/addon/tlog"
	"github.com/alaa-eddine/tokenloom/bus"
)

const feedChunkSize = 4096

func newFeedCommand(cfgFile *string) *cobra.Command {
	var (
		width     int
		logEvents bool
	)

	cmd := &cobra.Command{
		Use:   "feed [file]",
		Short: "Stream a file (or stdin) through the parser and print the event trace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCfg, err := loadCLIConfig(*cfgFile)
			if err != nil {
				return err
			}
			parserCfg, err := cliCfg.toParserConfig()
			if err != nil {
				return err
			}

			var in io.Reader = os.Stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("tokenloom: open input: %w", err)
				}
				defer f.Close()
				if mt, err := mimetype.DetectFile(args[0]); err == nil && !isLikelyText(mt.String()) {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s does not look like text (detected %s)\n", args[0], mt.String())
				}
				in = f
			}

			b := bus.New(bus.Config{
				SuppressErrorsFromTransforms: false,
				EmitDelay:                    parserCfg.EmitDelay,
			})
			defer b.Dispose()

			r := newRenderer(cmd.OutOrStdout(), width)
			if err := b.Register(r); err != nil {
				return err
			}
			if logEvents {
				if err := b.Register(tlog.New(nil, 0)); err != nil {
					return err
				}
			}
			if cliCfg.Highlight {
				if err := b.Register(highlight.New("monokai", "terminal16m")); err != nil {
					return err
				}
			}
			coll := collector.New(cliCfg.CopyOnFlush)
			if err := b.Register(coll); err != nil {
				return err
			}

			p, err := tokenloom.New(parserCfg, b)
			if err != nil {
				return err
			}

			reader := bufio.NewReaderSize(in, feedChunkSize)
			buf := make([]byte, feedChunkSize)
			for {
				n, readErr := reader.Read(buf)
				if n > 0 {
					p.Feed(string(buf[:n]))
				}
				if readErr == io.EOF {
					break
				}
				if readErr != nil {
					return fmt.Errorf("tokenloom: read input: %w", readErr)
				}
			}
			p.Flush()
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 80, "word-wrap width for rendered plain text")
	cmd.Flags().BoolVar(&logEvents, "log-events", false, "log every event via charmbracelet/log")
	return cmd
}

// isLikelyText reports whether a detected MIME type is reasonable input for
// a text-oriented stream parser.
func isLikelyText(mime string) bool {
	for _, prefix := range []string{"text/", "application/json", "application/xml", "application/x-yaml"} {
		if len(mime) >= len(prefix) && mime[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
