package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_DefaultsAndOverrides(t *testing.T) {
	in := `
# broker
MQTT_BROKER=tcp://localhost:1883
DEFAULT_ZONE = 2
REDIS_ADDRS=a:6379, b:6379,
STORE_DRIVER=Redis
FRAME_INTERVAL=50
`
	cfg, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" || cfg.DefaultZone != 2 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.StoreDriver != "redis" || len(cfg.RedisAddrs) != 2 || cfg.RedisAddrs[1] != "b:6379" {
		t.Errorf("store = %q %v", cfg.StoreDriver, cfg.RedisAddrs)
	}
	if cfg.Frame() != 50*time.Millisecond || cfg.Diagnostic() != time.Second {
		t.Errorf("intervals = %v %v", cfg.Frame(), cfg.Diagnostic())
	}
	if cfg.GNSSFixMaxAccuracy != 0.5 || cfg.ProximityNear != 5 {
		t.Errorf("thresholds = %+v", cfg)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing broker", "DEFAULT_ZONE=1"},
		{"bad line", "MQTT_BROKER=x\nNOEQUALS"},
		{"unknown key", "MQTT_BROKER=x\nFOO=1"},
		{"bad int", "MQTT_BROKER=x\nGPS_BAUD_RATE=fast"},
		{"zone range", "MQTT_BROKER=x\nDEFAULT_ZONE=20"},
		{"zero display interval", "MQTT_BROKER=x\nDISPLAY_UPDATE_INTERVAL=0"},
		{"negative display interval", "MQTT_BROKER=x\nDISPLAY_UPDATE_INTERVAL=-5"},
		{"negative gps timeout", "MQTT_BROKER=x\nGPS_TIMEOUT=-1"},
		{"thresholds order", "MQTT_BROKER=x\nGNSS_FIX_MAX_ACCURACY=3"},
		{"proximity order", "MQTT_BROKER=x\nPROXIMITY_ARRIVED=6"},
		{"store driver", "MQTT_BROKER=x\nSTORE_DRIVER=sqlite"},
		{"redis without addrs", "MQTT_BROKER=x\nSTORE_DRIVER=redis"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tc.in)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey_config.txt")
	if err := os.WriteFile(path, []byte("MQTT_BROKER=tcp://broker:1883\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_SampleConfig(t *testing.T) {
	cfg, err := Load("../../survey_config.txt")
	if err != nil {
		t.Fatalf("sample config: %v", err)
	}
	if cfg.DefaultZone != 9 || cfg.StoreDriver != "file" {
		t.Errorf("zone=%d driver=%q", cfg.DefaultZone, cfg.StoreDriver)
	}
	if cfg.DisplayI2CBus != "" {
		t.Errorf("display bus = %q, want empty", cfg.DisplayI2CBus)
	}
}
