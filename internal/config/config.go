package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	Variant string
	Use24h  bool
	WatchID string

	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string

	// InboxSize and OutboxSize bound a single encoded dictionary in each direction.
	InboxSize  int
	OutboxSize int

	WeatherPollMinutes int

	BatterySupply       string
	BatteryPollInterval time.Duration

	ConnectivitySource string
	BLEAdapter         string
	CompanionAddress   string
	CompanionTimeout   time.Duration

	HapticGPIO string

	SQLitePath string
}

// InboxTopic is where the companion publishes responses for this watch.
func (c Config) InboxTopic() string {
	return fmt.Sprintf("watchfaces/%s/inbox", c.WatchID)
}

// OutboxTopic is where this watch publishes its requests.
func (c Config) OutboxTopic() string {
	return fmt.Sprintf("watchfaces/%s/outbox", c.WatchID)
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	variant := strings.ToLower(strings.TrimSpace(os.Getenv("WATCHFACE_VARIANT")))
	if variant == "" {
		variant = "natswatch"
	}
	switch variant {
	case "basicdisplay", "withdate", "bluetoo", "addweb", "natswatch":
	default:
		return Config{}, fmt.Errorf("invalid WATCHFACE_VARIANT %q (allowed: basicdisplay, withdate, bluetoo, addweb, natswatch)", variant)
	}

	use24hStr := strings.TrimSpace(os.Getenv("CLOCK_24H"))
	if use24hStr == "" {
		use24hStr = "false"
	}
	use24h, err := strconv.ParseBool(use24hStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid CLOCK_24H %q: %w", use24hStr, err)
	}

	watchID := strings.TrimSpace(os.Getenv("WATCH_ID"))
	if watchID == "" {
		watchID = "pebble"
	}
	if strings.ContainsAny(watchID, "/#+") {
		return Config{}, fmt.Errorf("invalid WATCH_ID %q: must not contain MQTT topic separators or wildcards", watchID)
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	if mqttBroker == "" {
		mqttBroker = "localhost"
	}

	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "watchcore-" + watchID
	}

	inboxSize, err := parseSize("APPMESSAGE_INBOX_SIZE", 128)
	if err != nil {
		return Config{}, err
	}
	outboxSize, err := parseSize("APPMESSAGE_OUTBOX_SIZE", 128)
	if err != nil {
		return Config{}, err
	}

	pollStr := strings.TrimSpace(os.Getenv("WEATHER_POLL_MINUTES"))
	if pollStr == "" {
		pollStr = "30"
	}
	pollMinutes, err := strconv.Atoi(pollStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid WEATHER_POLL_MINUTES %q: %w", pollStr, err)
	}
	if pollMinutes < 1 || pollMinutes > 60 {
		return Config{}, fmt.Errorf("WEATHER_POLL_MINUTES must be within 1..60, got %d", pollMinutes)
	}

	batterySupply := strings.TrimSpace(os.Getenv("BATTERY_SUPPLY"))
	if batterySupply == "" {
		batterySupply = "BAT0"
	}

	batteryPollStr := strings.TrimSpace(os.Getenv("BATTERY_POLL_INTERVAL"))
	if batteryPollStr == "" {
		batteryPollStr = "30s"
	}
	batteryPoll, err := time.ParseDuration(batteryPollStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid BATTERY_POLL_INTERVAL %q: %w", batteryPollStr, err)
	}
	if batteryPoll <= 0 {
		return Config{}, fmt.Errorf("BATTERY_POLL_INTERVAL must be positive, got %v", batteryPoll)
	}

	source := strings.ToLower(strings.TrimSpace(os.Getenv("CONNECTIVITY_SOURCE")))
	if source == "" {
		source = "mqtt"
	}
	switch source {
	case "mqtt", "ble":
	default:
		return Config{}, fmt.Errorf("invalid CONNECTIVITY_SOURCE %q (allowed: mqtt, ble)", source)
	}

	bleAdapter := strings.TrimSpace(os.Getenv("BLE_ADAPTER"))
	if bleAdapter == "" {
		bleAdapter = "hci0"
	}

	companionAddress := strings.ToUpper(strings.TrimSpace(os.Getenv("COMPANION_ADDRESS")))
	if source == "ble" && companionAddress == "" {
		return Config{}, fmt.Errorf("COMPANION_ADDRESS is required when CONNECTIVITY_SOURCE=ble")
	}

	companionTimeoutStr := strings.TrimSpace(os.Getenv("COMPANION_TIMEOUT"))
	if companionTimeoutStr == "" {
		companionTimeoutStr = "60s"
	}
	companionTimeout, err := time.ParseDuration(companionTimeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid COMPANION_TIMEOUT %q: %w", companionTimeoutStr, err)
	}
	if companionTimeout <= 0 {
		return Config{}, fmt.Errorf("COMPANION_TIMEOUT must be positive, got %v", companionTimeout)
	}

	sqlitePath := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if sqlitePath == "" {
		sqlitePath = "data/watchcore.db"
	}

	return Config{
		AppEnv:              appEnv,
		LogLevel:            level,
		HTTPAddr:            httpAddr,
		Variant:             variant,
		Use24h:              use24h,
		WatchID:             watchID,
		MQTTBroker:          mqttBroker,
		MQTTPort:            mqttPort,
		MQTTClientID:        mqttClientID,
		InboxSize:           inboxSize,
		OutboxSize:          outboxSize,
		WeatherPollMinutes:  pollMinutes,
		BatterySupply:       batterySupply,
		BatteryPollInterval: batteryPoll,
		ConnectivitySource:  source,
		BLEAdapter:          bleAdapter,
		CompanionAddress:    companionAddress,
		CompanionTimeout:    companionTimeout,
		HapticGPIO:          strings.TrimSpace(os.Getenv("HAPTIC_GPIO")),
		SQLitePath:          sqlitePath,
	}, nil
}

func parseSize(env string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(env))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", env, s, err)
	}
	// a dictionary header plus one empty tuple is 8 bytes
	if n < 8 || n > 65535 {
		return 0, fmt.Errorf("%s must be within 8..65535, got %d", env, n)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
