package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port          int
	DataPath      string
	UploadPath    string
	OutputPath    string
	DBPath        string
	JWTSecret     string
	AdminUsername string
	AdminPassword string
	CORSOrigins   []string

	Engine          string // default pipeline engine: "http", "subprocess", "demo"
	WhisperXURL     string // inference server base URL (enables the http engine)
	TranscribeCmd   string // CLI command line (enables the subprocess engine)
	CorrectionsPath string // optional YAML correction-rule file
	MaxUploadMB     int64
	JobWorkers      int
}

func Load() *Config {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	dataPath := getEnv("DATA_PATH", "/data")
	maxUploadMB, _ := strconv.ParseInt(getEnv("MAX_UPLOAD_MB", "500"), 10, 64)
	workers, _ := strconv.Atoi(getEnv("JOB_WORKERS", "2"))

	// JWT secret: require explicit setting or generate random
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			log.Fatalf("Failed to generate random JWT secret: %v", err)
		}
		jwtSecret = hex.EncodeToString(b)
		log.Println("WARNING: JWT_SECRET not set, using random secret. Sessions will not survive restarts. Set JWT_SECRET env var for persistent sessions.")
	}

	// CORS origins: comma-separated list or "*" (default)
	corsOrigins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		corsOrigins = make([]string, 0, len(origins))
		for _, o := range origins {
			o = strings.TrimSpace(o)
			if o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}

	return &Config{
		Port:          port,
		DataPath:      dataPath,
		UploadPath:    getEnv("UPLOAD_PATH", dataPath+"/uploads"),
		OutputPath:    getEnv("OUTPUT_PATH", dataPath+"/output"),
		DBPath:        getEnv("DB_PATH", dataPath+"/diarize.db"),
		JWTSecret:     jwtSecret,
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		CORSOrigins:   corsOrigins,

		Engine:          getEnv("ENGINE", "demo"),
		WhisperXURL:     os.Getenv("WHISPERX_URL"),
		TranscribeCmd:   os.Getenv("TRANSCRIBE_CMD"),
		CorrectionsPath: os.Getenv("CORRECTIONS_PATH"),
		MaxUploadMB:     maxUploadMB,
		JobWorkers:      workers,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
