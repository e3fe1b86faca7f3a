package config

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings shared by every nesium CLI subcommand. Values
// are layered flag > environment (NESIUM_*) > config file > default, via
// viper bound to the command's pflag set.
type Config struct {
	Region     Region
	RNGSeed    int64
	SampleRate int
	NMITrace   string
	APUTrace   string
}

// BindFlags registers the shared flags on a pflag.FlagSet (a cobra
// command's Flags()) with their defaults.
func BindFlags(flags *pflag.FlagSet) {
	flags.String("region", "auto", "console timing region: auto, ntsc, pal, dendy, ntsc-jp")
	flags.Int64("rng-seed", 0, "power-on RNG seed, for deterministic replay")
	flags.Int("sample-rate", 48000, "audio output sample rate in Hz")
	flags.String("nmi-trace", "", "path to append one line per NMI service (cycle,scanline,dot)")
	flags.String("apu-trace", "", "path for a raw dump of the mixed audio output (little-endian float32 samples)")
}

// Load reads a Config from viper after BindFlags has registered the flag
// set on v (via v.BindPFlags). Environment variables are read under the
// NESIUM_ prefix, e.g. NESIUM_REGION, NESIUM_RNG_SEED.
func Load(v *viper.Viper) Config {
	v.SetEnvPrefix("nesium")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return Config{
		Region:     ParseRegion(v.GetString("region")),
		RNGSeed:    v.GetInt64("rng-seed"),
		SampleRate: v.GetInt("sample-rate"),
		NMITrace:   firstNonEmpty(v.GetString("nmi-trace"), os.Getenv("NESIUM_NMI_TRACE_PATH")),
		APUTrace:   firstNonEmpty(v.GetString("apu-trace"), os.Getenv("NESIUM_APU_TRACE_PATH")),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
