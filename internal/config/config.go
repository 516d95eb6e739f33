package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultServiceName      = "storefront"
	defaultCheckIntervalSec = 10
	defaultHTTPListen       = ":8080"
	defaultHealthPath       = "/healthz"
	defaultReadyPath        = "/readyz"
	defaultControlPrefix    = "/control"
	defaultCatalogBaseURL   = "https://api.sellauth.com"
	defaultDisplayAPIBase   = "https://discord.com/api/v10"
	defaultTelegramAPIBase  = "https://api.telegram.org"
	defaultStorePath        = "message-map.json"
	defaultNATSURL          = "nats://127.0.0.1:4222"
	defaultMappingBucket    = "storefront-mapping"
	defaultAsyncWorkers     = 4
	defaultAsyncQueueSize   = 64

	// ServiceModeSingle keeps single-instance mode with file-backed mapping store.
	ServiceModeSingle = "single"
	// ServiceModeNATS keeps NATS KV-backed mapping store for shared-state deployments.
	ServiceModeNATS = "nats"

	// NotifyChannelDiscord identifies the Discord webhook transport.
	NotifyChannelDiscord = "discord"
	// NotifyChannelTelegram identifies the Telegram transport.
	NotifyChannelTelegram = "telegram"
)

// Config holds service runtime settings and channel classification rules.
// Params: TOML sections from file or merged directory snapshot.
// Returns: validated runtime configuration.
type Config struct {
	Service ServiceConfig   `toml:"service"`
	Log     LogConfig       `toml:"log"`
	HTTP    HTTPConfig      `toml:"http"`
	Catalog CatalogConfig   `toml:"catalog"`
	Display DisplayConfig   `toml:"display"`
	Store   StoreConfig     `toml:"store"`
	Notify  NotifyConfig    `toml:"notify"`
	Channel []ChannelConfig `toml:"channel"`
}

// ServiceConfig contains process-level settings.
// Params: name, store mode, tick interval, and initial pause flag.
// Returns: service behavior defaults.
type ServiceConfig struct {
	Name             string `toml:"name"`
	Mode             string `toml:"mode"`
	CheckIntervalSec int    `toml:"check_interval_sec"`
	StartPaused      bool   `toml:"start_paused"`
}

// LogConfig defines console and file log sinks.
// Params: per-sink enable flag, level, format, and file path.
// Returns: logging runtime options.
type LogConfig struct {
	Console LogSinkConfig `toml:"console"`
	File    LogSinkConfig `toml:"file"`
}

// LogSinkConfig configures one log output sink.
// Params: enable flag, level name, format, and optional file path.
// Returns: sink behavior.
type LogSinkConfig struct {
	Enabled bool   `toml:"enabled"`
	Level   string `toml:"level"`
	Format  string `toml:"format"`
	Path    string `toml:"path"`
}

// HTTPConfig configures the keep-alive and operator control endpoint.
// Params: listen address and fixed-path overrides.
// Returns: HTTP surface behavior.
type HTTPConfig struct {
	Listen        string `toml:"listen"`
	HealthPath    string `toml:"health_path"`
	ReadyPath     string `toml:"ready_path"`
	ControlPrefix string `toml:"control_prefix"`
}

// CatalogConfig configures the commerce catalog fetch boundary.
// Params: API base, shop identity, bearer token, timeout, and URL fallback base.
// Returns: catalog fetcher settings.
type CatalogConfig struct {
	BaseURL        string `toml:"base_url"`
	ShopID         string `toml:"shop_id"`
	AuthToken      string `toml:"auth_token"`
	TimeoutSec     int    `toml:"timeout_sec"`
	ProductURLBase string `toml:"product_url_base"`
}

// DisplayConfig configures the chat-platform display surface client.
// Params: enable flag, API base, bot token, timeout, and default channel key.
// Returns: display surface settings.
type DisplayConfig struct {
	Enabled        bool   `toml:"enabled"`
	APIBase        string `toml:"api_base"`
	BotToken       string `toml:"bot_token"`
	TimeoutSec     int    `toml:"timeout_sec"`
	DefaultChannel string `toml:"default_channel"`
}

// ChannelConfig is one ordered classifier rule binding keywords to a surface.
// Params: channel key, keyword group, and platform surface id.
// Returns: classification rule; list order is matching precedence.
type ChannelConfig struct {
	Key       string   `toml:"key"`
	Keywords  []string `toml:"keywords"`
	SurfaceID string   `toml:"surface_id"`
}

// StoreConfig configures the mapping persistence backend.
// Params: file path for single mode and NATS URL list for nats mode.
// Returns: mapping store settings.
type StoreConfig struct {
	Path    string   `toml:"path"`
	NATSURL []string `toml:"nats_url"`
}

// NATSMappingConfig contains fixed JetStream KV controls for the mapping backend.
// Params: URL list, bucket name, and create toggle.
// Returns: NATS mapping backend options derived from runtime config.
type NATSMappingConfig struct {
	URL               []string
	Bucket            string
	AllowCreateBucket bool
}

// DeriveMappingNATSConfig builds fixed mapping-backend settings from runtime config.
// Params: full runtime configuration snapshot.
// Returns: non-user-overridable NATS mapping settings.
func DeriveMappingNATSConfig(cfg Config) NATSMappingConfig {
	urls := normalizeNATSURLs(cfg.Store.NATSURL)
	if len(urls) == 0 {
		urls = []string{defaultNATSURL}
	}
	return NATSMappingConfig{
		URL:               urls,
		Bucket:            defaultMappingBucket,
		AllowCreateBucket: true,
	}
}

// NotifyConfig defines outbound alert behavior.
// Params: async pool controls and per-channel transport settings.
// Returns: notification controls.
type NotifyConfig struct {
	Async    AsyncConfig      `toml:"async"`
	Discord  DiscordNotifier  `toml:"discord"`
	Telegram TelegramNotifier `toml:"telegram"`
}

// AsyncConfig bounds the fire-and-forget dispatch pool.
// Params: worker count and queue capacity.
// Returns: async dispatch controls.
type AsyncConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

// DiscordNotifier defines Discord webhook channel settings.
// Params: enabled flag, webhook URL, embed decorations, and retry policy.
// Returns: Discord alert transport options.
type DiscordNotifier struct {
	Enabled         bool        `toml:"enabled"`
	WebhookURL      string      `toml:"webhook_url"`
	TimeoutSec      int         `toml:"timeout_sec"`
	MentionEveryone bool        `toml:"mention_everyone"`
	ImageURL        string      `toml:"image_url"`
	Footer          string      `toml:"footer"`
	Retry           NotifyRetry `toml:"retry"`
}

// TelegramNotifier defines Telegram channel settings.
// Params: enabled flag, bot token, chat ID, API base URL, and retry policy.
// Returns: Telegram alert transport options.
type TelegramNotifier struct {
	Enabled  bool        `toml:"enabled"`
	BotToken string      `toml:"bot_token"`
	ChatID   string      `toml:"chat_id"`
	APIBase  string      `toml:"api_base"`
	Template string      `toml:"template"`
	Retry    NotifyRetry `toml:"retry"`
}

// NotifyRetry configures outbound delivery retries.
// Params: retry toggle, backoff, attempt limits, and logging.
// Returns: retry policy for one transport; disabled keeps the no-retry contract.
type NotifyRetry struct {
	Enabled        bool   `toml:"enabled"`
	Backoff        string `toml:"backoff"`
	InitialMS      int    `toml:"initial_ms"`
	MaxMS          int    `toml:"max_ms"`
	MaxAttempts    int    `toml:"max_attempts"`
	LogEachAttempt bool   `toml:"log_each_attempt"`
}

// ConfigSource describes file or directory config source.
// Params: exactly one of file path or directory path.
// Returns: normalized source descriptor.
type ConfigSource struct {
	File string
	Dir  string
}

// FromCLI builds normalized source configuration from input paths.
// Params: optional file and directory arguments.
// Returns: source descriptor or validation error.
func FromCLI(filePath, dirPath string) (ConfigSource, error) {
	filePath = strings.TrimSpace(filePath)
	dirPath = strings.TrimSpace(dirPath)

	if filePath == "" && dirPath == "" {
		return ConfigSource{}, errors.New("either --config-file or --config-dir must be provided")
	}
	if filePath != "" && dirPath != "" {
		return ConfigSource{}, errors.New("config source must be either file or dir")
	}

	if filePath != "" {
		return ConfigSource{File: filePath}, nil
	}
	return ConfigSource{Dir: dirPath}, nil
}

// LoadSnapshot loads and validates configuration from one source.
// Params: source selects file or directory mode.
// Returns: validated config or load/validation error.
func LoadSnapshot(src ConfigSource) (Config, error) {
	var cfg Config
	var err error
	if src.File != "" {
		cfg, err = loadFile(src.File)
	} else {
		cfg, err = loadDir(src.Dir)
	}
	if err != nil {
		return Config{}, err
	}
	ApplyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// CheckInterval returns the tick interval as a duration.
// Params: runtime config snapshot.
// Returns: scheduler tick period.
func CheckInterval(cfg Config) time.Duration {
	return time.Duration(cfg.Service.CheckIntervalSec) * time.Second
}

// NormalizeServiceMode lower-cases and defaults the service mode value.
// Params: raw mode string from config.
// Returns: canonical mode name.
func NormalizeServiceMode(mode string) string {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	if normalized == "" {
		return ServiceModeSingle
	}
	return normalized
}

// IsSupportedServiceMode reports whether the mode value is known.
// Params: canonical mode name.
// Returns: true for single or nats.
func IsSupportedServiceMode(mode string) bool {
	return mode == ServiceModeSingle || mode == ServiceModeNATS
}

// DefaultChannelRules returns the built-in ordered classifier rule set.
// Params: none.
// Returns: keyword groups in matching precedence without surface bindings.
func DefaultChannelRules() []ChannelConfig {
	return []ChannelConfig{
		{Key: "nitro", Keywords: []string{"nitro"}},
		{Key: "reactions", Keywords: []string{"reaction"}},
		{Key: "members", Keywords: []string{"member", "online", "offline"}},
		{Key: "decoration", Keywords: []string{"decoration", "décoration"}},
		{Key: "account", Keywords: []string{"discordaccount", "account"}},
		{Key: "boost", Keywords: []string{"boost"}},
	}
}

// configMergeHints carries explicit bool-presence markers used for directory overlays.
// Params: sparse fields decoded from one TOML fragment.
// Returns: merge behavior hints for zero-value bool overrides.
type configMergeHints struct {
	Service serviceMergeHints `toml:"service"`
	Display sectionMergeHints `toml:"display"`
	Notify  notifyMergeHints  `toml:"notify"`
}

type serviceMergeHints struct {
	StartPaused *bool `toml:"start_paused"`
}

type sectionMergeHints struct {
	Enabled *bool `toml:"enabled"`
}

type notifyMergeHints struct {
	Discord  sectionMergeHints `toml:"discord"`
	Telegram sectionMergeHints `toml:"telegram"`
}

// loadFile reads one TOML configuration file.
// Params: file path to config snapshot.
// Returns: decoded config or read/decode error.
func loadFile(path string) (Config, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %q: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(body, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config file %q: %w", path, err)
	}
	return cfg, nil
}

// loadFileForMerge reads one TOML file with merge hints.
// Params: file path to config fragment.
// Returns: decoded config plus explicit-bool hints for overlay merge.
func loadFileForMerge(path string) (Config, configMergeHints, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return Config{}, configMergeHints{}, fmt.Errorf("read config file %q: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(body, &cfg); err != nil {
		return Config{}, configMergeHints{}, fmt.Errorf("decode config file %q: %w", path, err)
	}
	var hints configMergeHints
	if err := toml.Unmarshal(body, &hints); err != nil {
		return Config{}, configMergeHints{}, fmt.Errorf("decode merge hints %q: %w", path, err)
	}
	return cfg, hints, nil
}

// loadDir reads and merges TOML files from one directory.
// Params: directory containing config fragments.
// Returns: merged config snapshot or load/decode error.
func loadDir(dir string) (Config, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Config{}, fmt.Errorf("read config dir %q: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.ToLower(filepath.Ext(name)) != ".toml" {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	if len(files) == 0 {
		return Config{}, fmt.Errorf("no .toml files found in %q", dir)
	}
	sort.Strings(files)

	var merged Config
	for _, file := range files {
		fragment, hints, err := loadFileForMerge(file)
		if err != nil {
			return Config{}, err
		}
		mergeConfig(&merged, fragment, hints)
	}
	return merged, nil
}

// mergeConfig overlays source fragment onto destination.
// Params: destination config, next fragment, and explicit-bool hints.
// Returns: merged configuration side-effect in dst.
func mergeConfig(dst *Config, src Config, hints configMergeHints) {
	if src.Service != (ServiceConfig{}) || hints.Service.StartPaused != nil {
		paused := dst.Service.StartPaused
		dst.Service = src.Service
		if hints.Service.StartPaused != nil {
			dst.Service.StartPaused = *hints.Service.StartPaused
		} else {
			dst.Service.StartPaused = paused
		}
	}
	if src.Log != (LogConfig{}) {
		dst.Log = src.Log
	}
	if src.HTTP != (HTTPConfig{}) {
		dst.HTTP = src.HTTP
	}
	if src.Catalog != (CatalogConfig{}) {
		dst.Catalog = src.Catalog
	}
	mergeDisplay(&dst.Display, src.Display, hints.Display)
	if src.Store.Path != "" || len(src.Store.NATSURL) > 0 {
		dst.Store = src.Store
	}
	mergeNotify(&dst.Notify, src.Notify, hints.Notify)
	if len(src.Channel) > 0 {
		// Channel order is matching precedence, so fragments replace the whole list.
		dst.Channel = append([]ChannelConfig(nil), src.Channel...)
	}
}

// mergeDisplay overlays display fragment preserving unset sibling fields.
// Params: destination display config, source fragment, and enabled hint.
// Returns: merged display configuration side-effect in dst.
func mergeDisplay(dst *DisplayConfig, src DisplayConfig, hints sectionMergeHints) {
	applyBoolMerge(&dst.Enabled, hints.Enabled)
	if strings.TrimSpace(src.APIBase) != "" {
		dst.APIBase = src.APIBase
	}
	if strings.TrimSpace(src.BotToken) != "" {
		dst.BotToken = src.BotToken
	}
	if src.TimeoutSec != 0 {
		dst.TimeoutSec = src.TimeoutSec
	}
	if strings.TrimSpace(src.DefaultChannel) != "" {
		dst.DefaultChannel = src.DefaultChannel
	}
}

// mergeNotify overlays notify fragment preserving unset sibling fields.
// Params: destination notify config, source fragment, and channel hints.
// Returns: merged notify configuration side-effect in dst.
func mergeNotify(dst *NotifyConfig, src NotifyConfig, hints notifyMergeHints) {
	if src.Async.Workers != 0 {
		dst.Async.Workers = src.Async.Workers
	}
	if src.Async.QueueSize != 0 {
		dst.Async.QueueSize = src.Async.QueueSize
	}

	applyBoolMerge(&dst.Discord.Enabled, hints.Discord.Enabled)
	if strings.TrimSpace(src.Discord.WebhookURL) != "" {
		dst.Discord.WebhookURL = src.Discord.WebhookURL
	}
	if src.Discord.TimeoutSec != 0 {
		dst.Discord.TimeoutSec = src.Discord.TimeoutSec
	}
	dst.Discord.MentionEveryone = dst.Discord.MentionEveryone || src.Discord.MentionEveryone
	if strings.TrimSpace(src.Discord.ImageURL) != "" {
		dst.Discord.ImageURL = src.Discord.ImageURL
	}
	if strings.TrimSpace(src.Discord.Footer) != "" {
		dst.Discord.Footer = src.Discord.Footer
	}
	if src.Discord.Retry != (NotifyRetry{}) {
		dst.Discord.Retry = src.Discord.Retry
	}

	applyBoolMerge(&dst.Telegram.Enabled, hints.Telegram.Enabled)
	if strings.TrimSpace(src.Telegram.BotToken) != "" {
		dst.Telegram.BotToken = src.Telegram.BotToken
	}
	if strings.TrimSpace(src.Telegram.ChatID) != "" {
		dst.Telegram.ChatID = src.Telegram.ChatID
	}
	if strings.TrimSpace(src.Telegram.APIBase) != "" {
		dst.Telegram.APIBase = src.Telegram.APIBase
	}
	if strings.TrimSpace(src.Telegram.Template) != "" {
		dst.Telegram.Template = src.Telegram.Template
	}
	if src.Telegram.Retry != (NotifyRetry{}) {
		dst.Telegram.Retry = src.Telegram.Retry
	}
}

// applyBoolMerge overrides destination bool only on explicit fragment value.
// Params: destination pointer and optional explicit value.
// Returns: destination updated when hint is present.
func applyBoolMerge(dst *bool, explicit *bool) {
	if explicit != nil {
		*dst = *explicit
	}
}

// ApplyDefaults fills unset configuration fields in place.
// Params: mutable config snapshot pointer.
// Returns: config normalized for validation and runtime use.
func ApplyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Service.Name) == "" {
		cfg.Service.Name = defaultServiceName
	}
	cfg.Service.Mode = NormalizeServiceMode(cfg.Service.Mode)
	if cfg.Service.CheckIntervalSec <= 0 {
		cfg.Service.CheckIntervalSec = defaultCheckIntervalSec
	}

	if cfg.Log.Console.Level == "" {
		cfg.Log.Console.Level = "info"
	}
	if cfg.Log.Console.Format == "" {
		cfg.Log.Console.Format = "line"
	}
	if cfg.Log.File.Level == "" {
		cfg.Log.File.Level = "info"
	}
	if cfg.Log.File.Format == "" {
		cfg.Log.File.Format = "json"
	}
	if !cfg.Log.Console.Enabled && !cfg.Log.File.Enabled {
		cfg.Log.Console.Enabled = true
	}

	if strings.TrimSpace(cfg.HTTP.Listen) == "" {
		cfg.HTTP.Listen = defaultHTTPListen
	}
	if strings.TrimSpace(cfg.HTTP.HealthPath) == "" {
		cfg.HTTP.HealthPath = defaultHealthPath
	}
	if strings.TrimSpace(cfg.HTTP.ReadyPath) == "" {
		cfg.HTTP.ReadyPath = defaultReadyPath
	}
	if strings.TrimSpace(cfg.HTTP.ControlPrefix) == "" {
		cfg.HTTP.ControlPrefix = defaultControlPrefix
	}

	if strings.TrimSpace(cfg.Catalog.BaseURL) == "" {
		cfg.Catalog.BaseURL = defaultCatalogBaseURL
	}
	if cfg.Catalog.TimeoutSec <= 0 {
		cfg.Catalog.TimeoutSec = 10
	}

	if strings.TrimSpace(cfg.Display.APIBase) == "" {
		cfg.Display.APIBase = defaultDisplayAPIBase
	}
	if cfg.Display.TimeoutSec <= 0 {
		cfg.Display.TimeoutSec = 10
	}

	if len(cfg.Channel) == 0 {
		cfg.Channel = DefaultChannelRules()
	}
	for i := range cfg.Channel {
		cfg.Channel[i].Key = strings.ToLower(strings.TrimSpace(cfg.Channel[i].Key))
		for j := range cfg.Channel[i].Keywords {
			cfg.Channel[i].Keywords[j] = strings.ToLower(strings.TrimSpace(cfg.Channel[i].Keywords[j]))
		}
	}
	if strings.TrimSpace(cfg.Display.DefaultChannel) == "" && len(cfg.Channel) > 0 {
		cfg.Display.DefaultChannel = cfg.Channel[len(cfg.Channel)-1].Key
	}
	cfg.Display.DefaultChannel = strings.ToLower(strings.TrimSpace(cfg.Display.DefaultChannel))

	if cfg.Service.Mode == ServiceModeSingle {
		if strings.TrimSpace(cfg.Store.Path) == "" {
			cfg.Store.Path = defaultStorePath
		}
		cfg.Store.NATSURL = nil
	} else {
		cfg.Store.NATSURL = normalizeNATSURLs(cfg.Store.NATSURL)
		if len(cfg.Store.NATSURL) == 0 {
			cfg.Store.NATSURL = []string{defaultNATSURL}
		}
	}

	if cfg.Notify.Async.Workers <= 0 {
		cfg.Notify.Async.Workers = defaultAsyncWorkers
	}
	if cfg.Notify.Async.QueueSize <= 0 {
		cfg.Notify.Async.QueueSize = defaultAsyncQueueSize
	}
	if cfg.Notify.Discord.TimeoutSec <= 0 {
		cfg.Notify.Discord.TimeoutSec = 10
	}
	fillNotifyRetryDefaults(&cfg.Notify.Discord.Retry)
	if cfg.Notify.Telegram.APIBase == "" {
		cfg.Notify.Telegram.APIBase = defaultTelegramAPIBase
	}
	fillNotifyRetryDefaults(&cfg.Notify.Telegram.Retry)
}

// fillNotifyRetryDefaults normalizes retry policy fields for one channel.
// Params: retry policy pointer.
// Returns: policy defaults applied in place.
func fillNotifyRetryDefaults(retry *NotifyRetry) {
	if retry == nil {
		return
	}
	if retry.Backoff == "" {
		retry.Backoff = "exponential"
	}
	if retry.InitialMS <= 0 {
		retry.InitialMS = 500
	}
	if retry.MaxMS <= 0 {
		retry.MaxMS = 60000
	}
}

// Validate validates full runtime configuration.
// Params: cfg snapshot to validate.
// Returns: first validation error.
func Validate(cfg Config) error {
	mode := NormalizeServiceMode(cfg.Service.Mode)
	if !IsSupportedServiceMode(mode) {
		return fmt.Errorf("service.mode has unsupported value %q", cfg.Service.Mode)
	}
	if cfg.Service.CheckIntervalSec <= 0 {
		return errors.New("service.check_interval_sec must be >0")
	}

	if strings.TrimSpace(cfg.Catalog.ShopID) == "" {
		return errors.New("catalog.shop_id is required")
	}
	if strings.TrimSpace(cfg.Catalog.AuthToken) == "" {
		return errors.New("catalog.auth_token is required")
	}

	if len(cfg.Channel) == 0 {
		return errors.New("at least one channel rule is required")
	}
	seen := make(map[string]struct{}, len(cfg.Channel))
	for i, channel := range cfg.Channel {
		if channel.Key == "" {
			return fmt.Errorf("channel[%d].key is required", i)
		}
		if _, dup := seen[channel.Key]; dup {
			return fmt.Errorf("channel key %q is duplicated", channel.Key)
		}
		seen[channel.Key] = struct{}{}
	}
	if _, ok := seen[cfg.Display.DefaultChannel]; !ok {
		return fmt.Errorf("display.default_channel %q does not match any channel key", cfg.Display.DefaultChannel)
	}

	if cfg.Display.Enabled {
		if strings.TrimSpace(cfg.Display.BotToken) == "" {
			return errors.New("display.bot_token is required when display is enabled")
		}
		for _, channel := range cfg.Channel {
			if strings.TrimSpace(channel.SurfaceID) == "" {
				return fmt.Errorf("channel %q needs surface_id when display is enabled", channel.Key)
			}
		}
	}

	if mode == ServiceModeSingle && strings.TrimSpace(cfg.Store.Path) == "" {
		return errors.New("store.path is required when service.mode=single")
	}

	if cfg.Notify.Discord.Enabled && strings.TrimSpace(cfg.Notify.Discord.WebhookURL) == "" {
		return errors.New("notify.discord.webhook_url is required when discord notify is enabled")
	}
	if cfg.Notify.Telegram.Enabled {
		if strings.TrimSpace(cfg.Notify.Telegram.BotToken) == "" {
			return errors.New("notify.telegram.bot_token is required when telegram notify is enabled")
		}
		if strings.TrimSpace(cfg.Notify.Telegram.ChatID) == "" {
			return errors.New("notify.telegram.chat_id is required when telegram notify is enabled")
		}
	}

	return nil
}

// normalizeNATSURLs trims and drops empty URL entries.
// Params: raw URL list from config.
// Returns: normalized URL list.
func normalizeNATSURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, url := range urls {
		trimmed := strings.TrimSpace(url)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
