package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tutorlens/internal/storage"
)

// Config stores runtime configuration for the client.
type Config struct {
	API     APIConfig
	Camera  CameraConfig
	Audio   AudioConfig
	Storage StorageConfig
	Debug   bool
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type CameraConfig struct {
	Command     string
	InputFormat string
	BackDevice  string
	FrontDevice string
}

type AudioConfig struct {
	RecorderCommand string
	PlayerCommand   string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
	MaxDuration     int
}

type StorageConfig struct {
	Dir string
}

// Load resolves configuration from a .env file, environment variables,
// and sensible defaults.
func Load() (Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	dir := strings.TrimSpace(os.Getenv("TUTORLENS_DATA_DIR"))
	if dir == "" {
		resolved, err := storage.DefaultDir()
		if err != nil {
			return Config{}, err
		}
		dir = resolved
	}

	cfg := Config{
		API: APIConfig{
			BaseURL: envOrDefault("TUTORLENS_API_BASE", "https://api.homework-tutor.com"),
			Timeout: time.Duration(envOrDefaultInt("TUTORLENS_API_TIMEOUT_MS", 10000)) * time.Millisecond,
		},
		Camera: CameraConfig{
			Command:     envOrDefault("TUTORLENS_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat: envOrDefault("TUTORLENS_CAMERA_INPUT_FORMAT", "v4l2"),
			BackDevice:  envOrDefault("TUTORLENS_CAMERA_BACK_DEVICE", "/dev/video0"),
			FrontDevice: strings.TrimSpace(os.Getenv("TUTORLENS_CAMERA_FRONT_DEVICE")),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("TUTORLENS_FFMPEG_COMMAND", "ffmpeg"),
			PlayerCommand:   envOrDefault("TUTORLENS_FFPLAY_COMMAND", "ffplay"),
			InputFormat:     envOrDefault("TUTORLENS_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("TUTORLENS_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("TUTORLENS_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("TUTORLENS_CHANNELS", 1),
			MaxDuration:     envOrDefaultInt("TUTORLENS_MAX_RECORD_SECONDS", 60),
		},
		Storage: StorageConfig{Dir: dir},
		Debug:   envOrDefaultBool("TUTORLENS_DEBUG", false),
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.MaxDuration <= 0 {
		cfg.Audio.MaxDuration = 60
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = 10 * time.Second
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
