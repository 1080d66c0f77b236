package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/config"
)

var configEnvVars = []string{
	"FIGHTTAG_CONFIG",
	"FIGHTTAG_DB_DRIVER",
	"FIGHTTAG_BACKEND",
	"FIGHTTAG_DEFAULT_OWNER",
	"FIGHTTAG_SAVE_TIMEOUT_SECONDS",
	"FIGHTTAG_BUCKET_SECONDS",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "fighttag.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then defaults are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DBDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.Backend, convey.ShouldEqual, "sql")
				convey.So(cfg.BucketSeconds, convey.ShouldEqual, 30)
				convey.So(cfg.Owner(), convey.ShouldEqual, annotate.OwnerAthlete)
				convey.So(cfg.SaveTimeout(), convey.ShouldEqual, 30*time.Second)
			})
		})

		convey.Convey("When a YAML file and env vars are both present", func() {
			path := writeConfig(t, `
default_owner: unassigned
bucket_seconds: 15
save_timeout_seconds: 5
coach: kru-somchai
`)
			_ = os.Setenv("FIGHTTAG_SAVE_TIMEOUT_SECONDS", "9")

			cfg, err := config.Load(ctx, path)

			convey.Convey("Then env wins over the file and the file wins over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Owner(), convey.ShouldEqual, annotate.OwnerUnassigned)
				convey.So(cfg.BucketSeconds, convey.ShouldEqual, 15)
				convey.So(cfg.SaveTimeoutSeconds, convey.ShouldEqual, 9)
				convey.So(cfg.Coach, convey.ShouldEqual, "kru-somchai")
			})
		})

		convey.Convey("When the file path comes from FIGHTTAG_CONFIG", func() {
			_ = os.Setenv("FIGHTTAG_CONFIG", writeConfig(t, "db_driver: postgres\n"))

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it is read", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DBDriver, convey.ShouldEqual, "postgres")
			})
		})

		convey.Convey("When values are invalid", func() {
			convey.Convey("Then an unknown owner policy is rejected", func() {
				_ = os.Setenv("FIGHTTAG_DEFAULT_OWNER", "referee")
				_, err := config.Load(ctx, "")
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})

			convey.Convey("Then the rest backend requires a URL", func() {
				_ = os.Setenv("FIGHTTAG_BACKEND", "rest")
				_, err := config.Load(ctx, "")
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}
