// midiinfo prints what go-pianoroll sees in a MIDI file.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Southclaws/fault/fmsg"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"go-pianoroll/midifile"
	"go-pianoroll/song"
	"go-pianoroll/transport"
	"go-pianoroll/widgets"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		msg := fmsg.GetIssue(err)
		if msg == "" {
			msg = err.Error()
		}
		fmt.Fprintln(os.Stderr, "midiinfo:", msg)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "midiinfo",
		Short:         "Inspect MIDI files as go-pianoroll loads them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(infoCmd(), notesCmd(), tempoCmd(), backupsCmd())
	return root
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Summarize resolution, length and instruments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := midifile.Load(args[0])
			if err != nil {
				return err
			}
			tempo := transport.NewTempoMap(doc.TicksPerBeat, doc.Tempos)
			end := doc.MaxTick()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "file:        %s\n", args[0])
			fmt.Fprintf(out, "resolution:  %d ticks per beat\n", doc.TicksPerBeat)
			fmt.Fprintf(out, "length:      %s ticks (%s)\n", humanize.Comma(int64(end)), tempo.Duration(end).Round(time.Millisecond))
			fmt.Fprintf(out, "notes:       %s\n", humanize.Comma(int64(doc.NoteCount())))
			fmt.Fprintf(out, "tempo:       %.1f bpm\n", tempo.BPM(0))
			if len(doc.TimeSignatures) > 0 {
				ts := doc.TimeSignatures[0]
				fmt.Fprintf(out, "meter:       %d/%d\n", ts.Numerator, ts.Denominator)
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("#", "instrument", "program", "drum", "notes", "range")
			for i, inst := range doc.Instruments {
				t.Row(strconv.Itoa(i), inst.Name, strconv.Itoa(int(inst.Program)),
					strconv.FormatBool(inst.Drum), humanize.Comma(int64(len(inst.Notes))), pitchRange(inst))
			}
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}
}

func pitchRange(inst *song.Instrument) string {
	if len(inst.Notes) == 0 {
		return "-"
	}
	lo, hi := song.MaxPitch, song.MinPitch
	for _, n := range inst.Notes {
		lo, hi = min(lo, n.Pitch), max(hi, n.Pitch)
	}
	return widgets.PitchLabel(lo) + ".." + widgets.PitchLabel(hi)
}

func notesCmd() *cobra.Command {
	var instrument int
	var limit int
	cmd := &cobra.Command{
		Use:   "notes FILE",
		Short: "List notes in start order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := midifile.Load(args[0])
			if err != nil {
				return err
			}
			tempo := transport.NewTempoMap(doc.TicksPerBeat, doc.Tempos)

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("instrument", "pitch", "velocity", "start", "end", "time")
			shown := 0
			for i, inst := range doc.Instruments {
				if instrument >= 0 && i != instrument {
					continue
				}
				for _, n := range inst.Notes {
					if limit > 0 && shown == limit {
						break
					}
					t.Row(inst.Name, widgets.PitchLabel(n.Pitch), strconv.Itoa(n.Velocity),
						humanize.Comma(int64(n.Start)), humanize.Comma(int64(n.End)),
						tempo.Duration(n.Start).Round(time.Millisecond).String())
					shown++
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().IntVarP(&instrument, "instrument", "i", -1, "Only list this instrument index")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Stop after this many notes (0 lists all)")
	return cmd
}

func tempoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tempo FILE",
		Short: "List tempo changes, meters and markers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := midifile.Load(args[0])
			if err != nil {
				return err
			}
			tempo := transport.NewTempoMap(doc.TicksPerBeat, doc.Tempos)

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("tick", "time", "event")
			for _, c := range doc.Tempos {
				t.Row(humanize.Comma(int64(c.Tick)), tempo.Duration(c.Tick).Round(time.Millisecond).String(),
					fmt.Sprintf("tempo %.2f bpm", c.BPM))
			}
			for _, ts := range doc.TimeSignatures {
				t.Row(humanize.Comma(int64(ts.Tick)), tempo.Duration(ts.Tick).Round(time.Millisecond).String(),
					fmt.Sprintf("meter %d/%d", ts.Numerator, ts.Denominator))
			}
			for _, m := range doc.Markers {
				t.Row(humanize.Comma(int64(m.Tick)), tempo.Duration(m.Tick).Round(time.Millisecond).String(),
					fmt.Sprintf("marker %q", m.Text))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

func backupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backups FILE",
		Short: "List timestamped backups of a file, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backups, err := midifile.ListBackups(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(backups) == 0 {
				fmt.Fprintln(out, "no backups")
				return nil
			}
			for _, b := range backups {
				fmt.Fprintf(out, "%s  %s\n", humanize.Time(b.Timestamp), b.Path)
			}
			return nil
		},
	}
}
