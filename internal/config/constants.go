// Package config holds the process-wide settings loaded once at start-up:
// sizing constants from an ini file and service settings from the environment.
package config

import (
	"os"

	"Thermex/internal/calc/calcerr"
	"gopkg.in/ini.v1"
)

// Constants are injected into every sizing run and never mutated afterwards.
type Constants struct {
	ArmLengthFt      float64 `json:"arm_length_ft"`
	SegmentLengthFt  float64 `json:"segment_length_ft"`
	FoulingAllowance float64 `json:"fouling_allowance"`

	ShellDiameterIn float64 `json:"shell_diameter_in"`
	BaffleSpacingIn float64 `json:"baffle_spacing_in"`
	TubesPerPass    int     `json:"tubes_per_pass"`

	Tolerance float64 `json:"tolerance"`
}

func DefaultConstants() Constants {
	return Constants{
		ArmLengthFt:      20,
		SegmentLengthFt:  40,
		FoulingAllowance: 0.001,
		ShellDiameterIn:  12,
		BaffleSpacingIn:  5,
		TubesPerPass:     20,
		Tolerance:        1e-6,
	}
}

// LoadConstants reads an ini file. An empty path or a missing file yields the
// defaults; a file that exists but cannot be parsed is an error.
func LoadConstants(path string) (Constants, error) {
	if path == "" {
		return DefaultConstants(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConstants(), nil
	}
	file, err := ini.Load(path)
	if err != nil {
		return Constants{}, calcerr.Config("config", "read %s: %v", path, err)
	}
	c := loadConstants(file)
	return c, c.Validate()
}

func loadConstants(file *ini.File) Constants {
	d := DefaultConstants()
	hw := file.Section("hardware")
	sh := file.Section("shell")
	return Constants{
		ArmLengthFt:      hw.Key("arm_length").MustFloat64(d.ArmLengthFt),
		SegmentLengthFt:  hw.Key("segment_length").MustFloat64(d.SegmentLengthFt),
		FoulingAllowance: file.Section("design").Key("fouling_allowance").MustFloat64(d.FoulingAllowance),
		ShellDiameterIn:  sh.Key("shell_diameter").MustFloat64(d.ShellDiameterIn),
		BaffleSpacingIn:  sh.Key("baffle_spacing").MustFloat64(d.BaffleSpacingIn),
		TubesPerPass:     sh.Key("tubes_per_pass").MustInt(d.TubesPerPass),
		Tolerance:        file.Section("check").Key("tolerance").MustFloat64(d.Tolerance),
	}
}

func (c Constants) Validate() error {
	switch {
	case c.ArmLengthFt <= 0 || c.SegmentLengthFt <= 0:
		return calcerr.Config("config", "arm and segment lengths must be positive")
	case c.SegmentLengthFt < 2*c.ArmLengthFt:
		return calcerr.Config("config", "segment length %g ft is shorter than two arms of %g ft", c.SegmentLengthFt, c.ArmLengthFt)
	case c.FoulingAllowance < 0:
		return calcerr.Config("config", "fouling allowance must not be negative")
	case c.ShellDiameterIn <= 0 || c.BaffleSpacingIn <= 0 || c.TubesPerPass <= 0:
		return calcerr.Config("config", "shell diameter, baffle spacing and tubes per pass must be positive")
	case c.Tolerance <= 0:
		return calcerr.Config("config", "tolerance must be positive")
	}
	return nil
}
