package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker            string
	MQTTClientIDGPS       string
	MQTTClientIDNavigator string
	MQTTClientIDDisplay   string
	MQTTClientIDConsole   string
	MQTTClientIDProducer  string

	// Topics
	TopicGPS       string
	TopicGPSStatus string
	TopicHeading   string
	TopicGuidance  string

	// GPS
	GPSSerialPort string
	GPSBaudRate   int
	GPSTimeout    int // milliseconds without a fix before a timeout status

	// Navigator
	HTTPAddr           string
	FrameInterval      int // milliseconds
	DiagnosticInterval int // milliseconds
	DefaultZone        int

	// Thresholds (metres)
	GNSSFixMaxAccuracy   float64
	GNSSFloatMaxAccuracy float64
	ProximityArrived     float64
	ProximityNear        float64

	// Waypoint store
	StoreDriver   string // "file" or "redis"
	StorePath     string
	RedisAddrs    []string
	RedisPassword string
	RedisKey      string

	// Display
	DisplayI2CBus         string
	DisplayUpdateInterval int // milliseconds

	// Mock producer
	MockOriginLat float64
	MockOriginLon float64
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported so other packages cannot modify it without locking.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock for initialization,
//     read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Defaults returns a Config with every optional key set.
func Defaults() *Config {
	return &Config{
		MQTTClientIDGPS:       "survey-gps",
		MQTTClientIDNavigator: "survey-navigator",
		MQTTClientIDDisplay:   "survey-display",
		MQTTClientIDConsole:   "survey-console",
		MQTTClientIDProducer:  "survey-producer",

		TopicGPS:       "survey/gps/fix",
		TopicGPSStatus: "survey/gps/status",
		TopicHeading:   "survey/heading",
		TopicGuidance:  "survey/guidance",

		GPSBaudRate: 9600,
		GPSTimeout:  10000,

		HTTPAddr:           ":8080",
		FrameInterval:      100,
		DiagnosticInterval: 1000,
		DefaultZone:        9,

		GNSSFixMaxAccuracy:   0.5,
		GNSSFloatMaxAccuracy: 2.0,
		ProximityArrived:     1,
		ProximityNear:        5,

		StoreDriver: "file",
		StorePath:   "waypoints.yaml",
		RedisKey:    "survey:waypoints",

		DisplayI2CBus:         "",
		DisplayUpdateInterval: 500,

		MockOriginLat: 35.0,
		MockOriginLon: 139.0,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines on top of the defaults. Blank lines and
// lines starting with # are ignored.
func Parse(r io.Reader) (*Config, error) {
	cfg := Defaults()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_NAVIGATOR":
		c.MQTTClientIDNavigator = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value

	// Topics
	case "TOPIC_GPS":
		c.TopicGPS = value
	case "TOPIC_GPS_STATUS":
		c.TopicGPSStatus = value
	case "TOPIC_HEADING":
		c.TopicHeading = value
	case "TOPIC_GUIDANCE":
		c.TopicGuidance = value

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		c.GPSBaudRate, err = parseInt(key, value)
	case "GPS_TIMEOUT":
		c.GPSTimeout, err = parseInt(key, value)

	// Navigator
	case "HTTP_ADDR":
		c.HTTPAddr = value
	case "FRAME_INTERVAL":
		c.FrameInterval, err = parseInt(key, value)
	case "DIAGNOSTIC_INTERVAL":
		c.DiagnosticInterval, err = parseInt(key, value)
	case "DEFAULT_ZONE":
		c.DefaultZone, err = parseInt(key, value)

	// Thresholds
	case "GNSS_FIX_MAX_ACCURACY":
		c.GNSSFixMaxAccuracy, err = parseFloat(key, value)
	case "GNSS_FLOAT_MAX_ACCURACY":
		c.GNSSFloatMaxAccuracy, err = parseFloat(key, value)
	case "PROXIMITY_ARRIVED":
		c.ProximityArrived, err = parseFloat(key, value)
	case "PROXIMITY_NEAR":
		c.ProximityNear, err = parseFloat(key, value)

	// Waypoint store
	case "STORE_DRIVER":
		c.StoreDriver = strings.ToLower(value)
	case "STORE_PATH":
		c.StorePath = value
	case "REDIS_ADDRS":
		c.RedisAddrs = nil
		for _, a := range strings.Split(value, ",") {
			if a = strings.TrimSpace(a); a != "" {
				c.RedisAddrs = append(c.RedisAddrs, a)
			}
		}
	case "REDIS_PASSWORD":
		c.RedisPassword = value
	case "REDIS_KEY":
		c.RedisKey = value

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseInt(key, value)

	// Mock producer
	case "MOCK_ORIGIN_LAT":
		c.MockOriginLat, err = parseFloat(key, value)
	case "MOCK_ORIGIN_LON":
		c.MockOriginLon, err = parseFloat(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

// validate checks required fields and ranges.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.GPSBaudRate <= 0 {
		return fmt.Errorf("GPS_BAUD_RATE must be positive, got %d", c.GPSBaudRate)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("FRAME_INTERVAL must be positive, got %d", c.FrameInterval)
	}
	if c.DiagnosticInterval <= 0 {
		return fmt.Errorf("DIAGNOSTIC_INTERVAL must be positive, got %d", c.DiagnosticInterval)
	}
	if c.GPSTimeout < 0 {
		return fmt.Errorf("GPS_TIMEOUT must not be negative, got %d", c.GPSTimeout)
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive, got %d", c.DisplayUpdateInterval)
	}
	if c.DefaultZone < 1 || c.DefaultZone > 19 {
		return fmt.Errorf("DEFAULT_ZONE must be 1-19, got %d", c.DefaultZone)
	}
	if c.GNSSFixMaxAccuracy <= 0 || c.GNSSFloatMaxAccuracy <= c.GNSSFixMaxAccuracy {
		return fmt.Errorf("GNSS accuracy thresholds must satisfy 0 < FIX < FLOAT, got %g/%g",
			c.GNSSFixMaxAccuracy, c.GNSSFloatMaxAccuracy)
	}
	if c.ProximityArrived <= 0 || c.ProximityNear <= c.ProximityArrived {
		return fmt.Errorf("proximity thresholds must satisfy 0 < ARRIVED < NEAR, got %g/%g",
			c.ProximityArrived, c.ProximityNear)
	}
	switch c.StoreDriver {
	case "file":
		if c.StorePath == "" {
			return fmt.Errorf("STORE_PATH is required for the file store")
		}
	case "redis":
		if len(c.RedisAddrs) == 0 {
			return fmt.Errorf("REDIS_ADDRS is required for the redis store")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be file or redis, got %q", c.StoreDriver)
	}
	return nil
}

// Frame returns FRAME_INTERVAL as a duration.
func (c *Config) Frame() time.Duration { return ms(c.FrameInterval) }

// Diagnostic returns DIAGNOSTIC_INTERVAL as a duration.
func (c *Config) Diagnostic() time.Duration { return ms(c.DiagnosticInterval) }

// GPSWatchdog returns GPS_TIMEOUT as a duration; zero disables it.
func (c *Config) GPSWatchdog() time.Duration { return ms(c.GPSTimeout) }

// DisplayInterval returns DISPLAY_UPDATE_INTERVAL as a duration.
func (c *Config) DisplayInterval() time.Duration { return ms(c.DisplayUpdateInterval) }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
// This is the only function that can set globalConfig.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
