package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mikai233/nesium-sub003/internal/config"
	"github.com/mikai233/nesium-sub003/internal/nes"
	"github.com/mikai233/nesium-sub003/internal/palette"
)

// attachTrace wires NESIUM_NMI_TRACE_PATH/--nmi-trace to the console, if
// set. The file is tagged with a run ID so consecutive runs against the
// same path can be told apart.
func attachTrace(console *nes.NES, cfg config.Config) error {
	if cfg.NMITrace == "" {
		return nil
	}
	f, err := os.Create(cfg.NMITrace)
	if err != nil {
		return fmt.Errorf("opening nmi trace file: %w", err)
	}
	fmt.Fprintf(f, "# run %s\n", uuid.NewString())
	console.SetNMITrace(f)
	return nil
}

func newTraceCmd(v *viper.Viper) *cobra.Command {
	var frames int
	cmd := &cobra.Command{
		Use:   "trace <rom>",
		Short: "Run a ROM and dump NMI/APU traces to the configured paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(v)
			if cfg.NMITrace == "" && cfg.APUTrace == "" {
				return fmt.Errorf("trace requires --nmi-trace and/or --apu-trace (or NESIUM_NMI_TRACE_PATH/NESIUM_APU_TRACE_PATH)")
			}

			data, err := loadROM(args[0])
			if err != nil {
				return err
			}

			console := nes.New(cfg.Region.Resolve(0), palette.RGBA8888, nil)
			console.SetRNGSeed(cfg.RNGSeed)
			if err := console.LoadCartridge(data); err != nil {
				return err
			}
			if err := attachTrace(console, cfg); err != nil {
				return err
			}

			var apuFile *os.File
			if cfg.APUTrace != "" {
				apuFile, err = os.Create(cfg.APUTrace)
				if err != nil {
					return fmt.Errorf("opening apu trace file: %w", err)
				}
				fmt.Fprintf(apuFile, "# run %s\n", uuid.NewString())
				defer apuFile.Close()
			}

			for frame := 0; frame < frames; frame++ {
				console.RunFrame(false)
				if apuFile != nil {
					dumpAudioFrame(apuFile, console.AudioSamplesDrain())
				}
			}

			fmt.Printf("traced %d frames\n", frames)
			return nil
		},
	}
	cmd.Flags().IntVar(&frames, "frames", 60, "number of frames to trace")
	return cmd
}

// dumpAudioFrame appends one frame's worth of drained stereo samples as
// little-endian float32 pairs, the rawest APU trace format that needs no
// channel-level instrumentation the APU doesn't expose.
func dumpAudioFrame(f *os.File, samples []float32) {
	buf := make([]byte, 4)
	for _, s := range samples {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(s))
		f.Write(buf)
	}
}
