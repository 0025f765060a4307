package config

import (
	"strconv"

	agollo "github.com/apolloconfig/agollo/v4"
	apconf "github.com/apolloconfig/agollo/v4/env/config"
	"github.com/apolloconfig/agollo/v4/storage"
)

// overrideFromApollo starts Apollo client and overrides config values if present.
// Returns a closer to stop the Apollo client.
func overrideFromApollo(cfg *Config, store *Store) (func(), error) {
	if cfg.Apollo.Addrs == "" || cfg.Apollo.AppID == "" {
		configLogger.Warn("apollo: missing APOLLO_ADDRS or APOLLO_APP_ID; skip")
		return nil, nil
	}

	appCfg := apolloAppConfig(cfg)
	ns := appCfg.NamespaceName

	client, err := agollo.StartWithConfig(func() (*apconf.AppConfig, error) { return appCfg, nil })
	if err != nil {
		return nil, err
	}

	next := cloneConfig(cfg)
	applyOverrides(cacheLookup(client, ns), next)
	_ = store.UpdateValidated(next, map[string]bool{"apollo.init": true})

	client.AddChangeListener(&changeListener{ns: ns, client: client, store: store})

	// agollo v4 has no public Stop
	return func() {}, nil
}

// apolloAppConfig maps the Apollo settings onto agollo's client config.
func apolloAppConfig(cfg *Config) *apconf.AppConfig {
	ns := cfg.Apollo.Namespace
	if ns == "" {
		ns = "application"
	}
	return &apconf.AppConfig{
		AppID:         cfg.Apollo.AppID,
		Cluster:       cfg.Apollo.Cluster,
		NamespaceName: ns,
		IP:            cfg.Apollo.Addrs,
		Secret:        cfg.Apollo.AccessKey,
	}
}

// lookup returns the raw string value for a dotted key.
type lookup func(key string) (string, bool)

func cacheLookup(client agollo.Client, namespace string) lookup {
	return func(key string) (string, bool) {
		cache := client.GetConfigCache(namespace)
		if cache == nil {
			return "", false
		}
		v, err := cache.Get(key)
		if err != nil {
			return "", false
		}
		s, ok := v.(string)
		return s, ok
	}
}

func setString(dst *string, allowEmpty bool) func(string) {
	return func(s string) {
		if s != "" || allowEmpty {
			*dst = s
		}
	}
}

func setInt(dst *int) func(string) {
	return func(s string) {
		if n, err := strconv.Atoi(s); err == nil {
			*dst = n
		}
	}
}

// overrideKeys lists every Apollo key this service understands.
func overrideKeys(cfg *Config) map[string]func(string) {
	return map[string]func(string){
		"app.env":              setString(&cfg.AppEnv, false),
		"server.addr":          setString(&cfg.Server.Addr, false),
		"server.static_dir":    setString(&cfg.Server.StaticDir, true),
		"log.level":            setString(&cfg.Log.Level, false),
		"log.format":           setString(&cfg.Log.Format, false),
		"db.dsn":               setString(&cfg.DB.DSN, false),
		"db.max_open":          setInt(&cfg.DB.MaxOpenConns),
		"db.max_idle":          setInt(&cfg.DB.MaxIdleConns),
		"redis.addr":           setString(&cfg.Redis.Addr, false),
		"redis.password":       setString(&cfg.Redis.Password, true),
		"redis.db":             setInt(&cfg.Redis.DB),
		"mq.url":               setString(&cfg.MQ.URL, false),
		"es.addrs":             setString(&cfg.ES.Addrs, false),
		"es.username":          setString(&cfg.ES.Username, true),
		"es.password":          setString(&cfg.ES.Password, true),
		"ratelimit.max":        setInt(&cfg.RateLimit.Max),
		"ratelimit.window_sec": setInt(&cfg.RateLimit.WindowSec),
	}
}

func applyOverrides(get lookup, cfg *Config) {
	for key, set := range overrideKeys(cfg) {
		if v, ok := get(key); ok {
			set(v)
		}
	}
}

type changeListener struct {
	ns     string
	client agollo.Client
	store  *Store
}

func (c *changeListener) OnChange(e *storage.ChangeEvent) {
	configLogger.Sugar().Infof("apollo change: namespace=%s, changes=%d", e.Namespace, len(e.Changes))
	next := cloneConfig(c.store.Get())
	applyOverrides(cacheLookup(c.client, c.ns), next)
	changed := map[string]bool{}
	for k := range e.Changes {
		changed[k] = true
	}
	_ = c.store.UpdateValidated(next, changed)
}

func (c *changeListener) OnNewestChange(e *storage.FullChangeEvent) {
	configLogger.Sugar().Debugf("apollo snapshot: namespace=%s, keys=%d", e.Namespace, len(e.Changes))
}
