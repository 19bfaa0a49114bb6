package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddTrimFlags adds the mutually exclusive trim flags
func AddTrimFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("trim-start", 0, "Remove N seconds from the beginning")
	cmd.Flags().Float64("trim-end", 0, "Remove N seconds from the end")
	cmd.Flags().String("trim", "", `Trim to time range (e.g. "30-120" or "1:30-2:45")`)
}

// TrimSpecFromFlags reads the trim flags; at most one may be set
func TrimSpecFromFlags(cmd *cobra.Command) (TrimSpec, error) {
	flags := cmd.Flags()

	var set []string
	for _, name := range []string{"trim-start", "trim-end", "trim"} {
		if f := flags.Lookup(name); f != nil && f.Changed {
			set = append(set, name)
		}
	}
	if len(set) == 0 {
		return TrimSpec{}, nil
	}
	if len(set) > 1 {
		return TrimSpec{}, invalidArgf("cannot specify multiple trim options (%v)", set)
	}

	switch set[0] {
	case "trim-start":
		seconds, err := flags.GetFloat64("trim-start")
		if err != nil {
			return TrimSpec{}, fmt.Errorf("failed to get trim-start flag: %w", err)
		}
		return TrimSpec{Kind: TrimStart, Seconds: seconds}, nil
	case "trim-end":
		seconds, err := flags.GetFloat64("trim-end")
		if err != nil {
			return TrimSpec{}, fmt.Errorf("failed to get trim-end flag: %w", err)
		}
		return TrimSpec{Kind: TrimEnd, Seconds: seconds}, nil
	default:
		value, err := flags.GetString("trim")
		if err != nil {
			return TrimSpec{}, fmt.Errorf("failed to get trim flag: %w", err)
		}
		r, err := ParseTimeRange(value)
		if err != nil {
			return TrimSpec{}, err
		}
		return TrimSpec{Kind: TrimRange, Range: r}, nil
	}
}

// HandleGlobalFlags copies persistent flags that were set explicitly onto config
func HandleGlobalFlags(cmd *cobra.Command, config *Config) error {
	for name, target := range map[string]*bool{
		"verbose":  &config.Verbose,
		"quiet":    &config.Quiet,
		"no-color": &config.NoColor,
	} {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		value, err := cmd.Flags().GetBool(name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		*target = value
	}
	return nil
}

// StringFlagOr returns the flag value when set, else fallback
func StringFlagOr(cmd *cobra.Command, name, fallback string) string {
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return fallback
	}
	value, _ := cmd.Flags().GetString(name)
	return value
}
