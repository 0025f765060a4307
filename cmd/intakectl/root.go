package main

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jrm-intake-api/internal/config"
)

// Settings keys. Each also reads the matching env var (db.dsn -> DB_DSN).
const (
	keyDBDriver    = "db.driver"
	keyDBDSN       = "db.dsn"
	keyESAddrs     = "es.addrs"
	keyESIndex     = "es.index"
	keyJWTSecret   = "jwt.secret"
	keyJWTIssuer   = "jwt.issuer"
	keyJWTAudience = "jwt.audience"
)

// cli carries state shared by every subcommand.
type cli struct {
	configFile string
	v          *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	root := &cobra.Command{
		Use:           "intakectl",
		Short:         "intakectl manages the intake and metrics store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.loadSettings(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (yaml)")
	root.PersistentFlags().String("db-driver", "", "sqlite or postgres (env DB_DRIVER)")
	root.PersistentFlags().String("db-dsn", "", "database DSN (env DB_DSN)")

	root.AddCommand(
		c.migrateCmd(),
		c.exportCmd(),
		c.reindexCmd(),
		c.tokenCmd(),
		normalizeCmd(),
	)
	return root
}

func (c *cli) loadSettings(cmd *cobra.Command) error {
	_ = godotenv.Load()

	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.v.AutomaticEnv()
	if c.configFile != "" {
		c.v.SetConfigFile(c.configFile)
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}
	flags := cmd.Flags()
	if err := c.v.BindPFlag(keyDBDriver, flags.Lookup("db-driver")); err != nil {
		return err
	}
	return c.v.BindPFlag(keyDBDSN, flags.Lookup("db-dsn"))
}

// config resolves the service config: env defaults first, then the config
// file and flags.
func (c *cli) config() *config.Config {
	cfg := config.FromEnv()
	override := func(key string, dst *string) {
		if c.v.IsSet(key) && c.v.GetString(key) != "" {
			*dst = c.v.GetString(key)
		}
	}
	override(keyDBDriver, &cfg.DB.Driver)
	override(keyDBDSN, &cfg.DB.DSN)
	override(keyESAddrs, &cfg.ES.Addrs)
	override(keyESIndex, &cfg.ES.Index)
	override(keyJWTSecret, &cfg.JWT.HSSecret)
	override(keyJWTIssuer, &cfg.JWT.Issuer)
	override(keyJWTAudience, &cfg.JWT.Audience)
	return cfg
}
