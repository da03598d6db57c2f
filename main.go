package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-pianoroll/config"
	"go-pianoroll/debug"
	"go-pianoroll/midifile"
	"go-pianoroll/song"
	"go-pianoroll/theme"
	"go-pianoroll/transport"
	"go-pianoroll/tui"
)

var opts struct {
	config  string
	log     string
	palette string
}

var rootCmd = &cobra.Command{
	Use:   "go-pianoroll [file.mid]",
	Short: "A terminal piano roll for MIDI files",
	Long: `go-pianoroll edits the notes of a standard MIDI file in a piano roll.

Drag notes to move them, drag their right edge to resize, right-click
for note actions. Press ? for the key bindings.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&opts.config, "config", "c", "",
		"Config file (default ~/.config/go-pianoroll/config.json)")
	rootCmd.Flags().StringVarP(&opts.log, "log", "l", "",
		"Write debug logs to the specified file (empty disables)")
	rootCmd.Flags().StringVarP(&opts.palette, "palette", "p", "",
		"GIMP palette (.gpl) for the color theme")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		msg := fmsg.GetIssue(err)
		if msg == "" {
			msg = err.Error()
		}
		fmt.Fprintln(os.Stderr, "go-pianoroll:", msg)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if opts.log != "" {
		if err := debug.Enable(opts.log); err != nil {
			return fault.Wrap(err, fmsg.WithDesc("enable log", "Could not open the log file."))
		}
		defer debug.Disable()
	}

	cfgPath := opts.config
	if cfgPath == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		cfgPath = p
	}
	cfg, err := config.LoadFrom(cfgPath)
	if err != nil {
		return err
	}
	if opts.palette != "" {
		cfg.UI.Palette = opts.palette
	}

	palette := theme.DefaultPalette()
	if cfg.UI.Palette != "" {
		if palette, err = theme.LoadGPL(cfg.UI.Palette); err != nil {
			return err
		}
	}

	var doc *song.Document
	path := ""
	if len(args) == 1 {
		path = args[0]
		if doc, err = midifile.Load(path); err != nil {
			return err
		}
		cfg.AddRecent(path)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	clock := transport.NewClock(cfg.Interval())
	go clock.Run(ctx)

	m := tui.NewModel(cfg, theme.New(palette), clock, doc, path)
	m.ConfigPath = cfgPath
	debug.Log("main", "starting with %q", path)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fault.Wrap(err, fmsg.With("run ui"))
	}
	return nil
}
