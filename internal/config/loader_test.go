package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/SaeedTaghavi/transit-fitting/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	Convey("With no file and no environment, defaults apply", t, func() {
		cfg, err := config.Load("")
		So(err, ShouldBeNil)
		So(cfg.LogLevel, ShouldEqual, "info")
		So(cfg.Width, ShouldEqual, 2)
		So(cfg.ContinuumMethod, ShouldEqual, "constant")
		So(cfg.Walkers, ShouldEqual, 200)
		So(cfg.Burn, ShouldEqual, 10)
		So(cfg.Iters, ShouldEqual, 100)
		So(cfg.Supersample, ShouldEqual, 7)
		So(cfg.Constants.G, ShouldAlmostEqual, 6.6743e-8, 1e-11)
		So(cfg.Planets, ShouldBeEmpty)
	})
}

func TestLoadFile(t *testing.T) {
	Convey("A YAML file overrides defaults", t, func() {
		path := writeConfigFile(t, `
log_level: debug
walkers: 64
width: 1.5
planets:
  - name: b
    period: 3.0
    period_err: 0.01
    epoch: 0.5
    epoch_err: 0.01
    duration: 0.1
`)
		cfg, err := config.Load(path)
		So(err, ShouldBeNil)
		So(cfg.LogLevel, ShouldEqual, "debug")
		So(cfg.Walkers, ShouldEqual, 64)
		So(cfg.Width, ShouldEqual, 1.5)
		So(cfg.Iters, ShouldEqual, 100) // untouched default

		So(cfg.Planets, ShouldHaveLength, 1)
		planets := cfg.LightCurvePlanets()
		So(planets[0].Name, ShouldEqual, "b")
		So(planets[0].Period, ShouldEqual, 3.0)
		So(planets[0].Duration, ShouldEqual, 0.1)
	})

	Convey("A missing file fails loading", t, func() {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		So(err, ShouldWrap, config.ErrLoadConfig)
	})
}

func TestLoadEnv(t *testing.T) {
	path := writeConfigFile(t, "walkers: 64\n")
	t.Setenv("TRANSITFIT_WALKERS", "32")
	t.Setenv("TRANSITFIT_LOG_LEVEL", "warn")

	Convey("Environment variables override the file", t, func() {
		cfg, err := config.Load(path)
		So(err, ShouldBeNil)
		So(cfg.Walkers, ShouldEqual, 32)
		So(cfg.LogLevel, ShouldEqual, "warn")
	})
}

func TestLoadEnvConfigPath(t *testing.T) {
	path := writeConfigFile(t, "width: 3.5\n")
	t.Setenv("TRANSITFIT_CONFIG", path)

	Convey("TRANSITFIT_CONFIG names the file when no path is given", t, func() {
		cfg, err := config.Load("")
		So(err, ShouldBeNil)
		So(cfg.Width, ShouldEqual, 3.5)
	})
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"zero width":       "width: 0\n",
		"one walker":       "walkers: 1\n",
		"zero iterations":  "iters: 0\n",
		"negative burn":    "burn: -1\n",
		"zero period":      "planets:\n  - name: b\n    period: 0\n    duration: 0.1\n",
		"missing duration": "planets:\n  - name: b\n    period: 3\n",
	}
	Convey("Validation rejects impossible settings", t, func() {
		for name, content := range cases {
			Convey(name, func() {
				_, err := config.Load(writeConfigFile(t, content))
				So(err, ShouldWrap, config.ErrInvalidConfig)
			})
		}
	})
}
