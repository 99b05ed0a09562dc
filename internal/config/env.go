package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "PIDSIM"

// ApplyEnv overlays PIDSIM_* environment variables on cfg, e.g. PIDSIM_KP or
// PIDSIM_LOG_LEVEL. Unset variables leave the field alone.
func ApplyEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	floats := map[string]*float64{
		"kp":        &cfg.Controller.Kp,
		"ki":        &cfg.Controller.Ki,
		"kd":        &cfg.Controller.Kd,
		"bias":      &cfg.Environment.Bias,
		"amplitude": &cfg.Environment.Amplitude,
		"period":    &cfg.Environment.Period,
		"horizon":   &cfg.Sim.Horizon,
		"duration":  &cfg.Sim.Duration,
	}
	ints := map[string]*int{
		"fps": &cfg.Sim.FPS,
	}
	strs := map[string]*string{
		"controller": &cfg.Controller.Type,
		"integrator": &cfg.Sim.Integrator,
		"log.level":  &cfg.Log.Level,
		"log.format": &cfg.Log.Format,
		"log.file":   &cfg.Log.File,
	}

	for key, dst := range floats {
		raw, ok, err := lookup(v, key)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%s_%s: %w", EnvPrefix, envName(key), err)
		}
		*dst = f
	}
	for key, dst := range ints {
		raw, ok, err := lookup(v, key)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s_%s: %w", EnvPrefix, envName(key), err)
		}
		*dst = n
	}
	if raw, ok, err := lookup(v, "seed"); err != nil {
		return err
	} else if ok {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%s_SEED: %w", EnvPrefix, err)
		}
		cfg.Sim.Seed = n
	}
	for key, dst := range strs {
		raw, ok, err := lookup(v, key)
		if err != nil {
			return err
		}
		if ok {
			*dst = raw
		}
	}

	return cfg.Validate()
}

func lookup(v *viper.Viper, key string) (string, bool, error) {
	if err := v.BindEnv(key); err != nil {
		return "", false, err
	}
	if !v.IsSet(key) {
		return "", false, nil
	}
	return strings.TrimSpace(v.GetString(key)), true, nil
}

func envName(key string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
}
