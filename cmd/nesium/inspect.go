package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mikai233/nesium-sub003/internal/cartridge"
)

var inspectLabelStyle = lipgloss.NewStyle().Bold(true).Width(14)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <rom>",
		Short: "Print a cartridge header summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadROM(args[0])
			if err != nil {
				return err
			}
			cart, err := cartridge.LoadCartridge(data)
			if err != nil {
				return err
			}
			printHeader(cart.Header)
			return nil
		},
	}
}

func printHeader(h cartridge.Header) {
	title := lipgloss.NewStyle().Bold(true).Underline(true).Render("cartridge header")
	fmt.Println(title)
	row("mapper", fmt.Sprintf("%d (submapper %d)", h.MapperID, h.Submapper))
	row("mirroring", mirroringName(h.Mirroring))
	row("prg-rom", fmt.Sprintf("%d KiB", h.PRGROMSize/1024))
	if h.CHRROMSize > 0 {
		row("chr-rom", fmt.Sprintf("%d KiB", h.CHRROMSize/1024))
	} else {
		row("chr-ram", fmt.Sprintf("%d KiB", h.CHRRAMSize/1024))
	}
	row("battery", fmt.Sprintf("%t", h.Battery))
	row("trainer", fmt.Sprintf("%t", h.TrainerPresent))
	row("nes2.0", fmt.Sprintf("%t", h.IsNES20))
	row("tv-system", tvSystemName(h.TVSystem))
}

func row(label, value string) {
	fmt.Printf("%s %s\n", inspectLabelStyle.Render(label+":"), value)
}

func mirroringName(m cartridge.MirrorMode) string {
	switch m {
	case cartridge.MirrorHorizontal:
		return "horizontal"
	case cartridge.MirrorVertical:
		return "vertical"
	case cartridge.MirrorSingleScreen0:
		return "single-screen-0"
	case cartridge.MirrorSingleScreen1:
		return "single-screen-1"
	case cartridge.MirrorFourScreen:
		return "four-screen"
	default:
		return "unknown"
	}
}

func tvSystemName(tv uint8) string {
	switch tv {
	case 1:
		return "pal"
	case 2:
		return "dual-compatible"
	default:
		return "ntsc"
	}
}
