package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"fight-club/internal/api"
	"fight-club/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🏓 ================================")
	log.Println("🏓  PONG - MATCH SERVER")
	log.Println("🏓 ================================")

	appConfig := config.Load()
	serverCfg := appConfig.Server
	simCfg := appConfig.Sim
	matchCfg := appConfig.Match

	log.Printf("🏓 Arena: %.0fx%.0f, win score %d, tick rate %d Hz, broadcast %d Hz",
		simCfg.Arena.Width, simCfg.Arena.Height, simCfg.Score.WinScore,
		matchCfg.TickRate, matchCfg.BroadcastRate)
	log.Printf("🛡️ Match cap: %d, idle timeout: %s", matchCfg.MaxMatches, matchCfg.IdleTimeout)

	debugCfg := api.DefaultObservabilityConfig()
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	eventLogPath := getEnvWithDefault("EVENT_LOG_PATH", "events.jsonl")
	log.Printf("📝 Event log: %s", eventLogPath)

	if len(serverCfg.CORSOrigins) > 0 {
		log.Printf("🌐 CORS origins: %v", serverCfg.CORSOrigins)
	}

	server := api.NewServer(simCfg, matchCfg, eventLogPath, serverCfg.CORSOrigins)

	addr := ":" + strconv.Itoa(serverCfg.Port)
	go func() {
		log.Printf("🌐 Pong server on http://localhost%s", addr)
		log.Printf("🏓 Create a match: http://localhost%s/create", addr)

		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	server.Stop()
	log.Println("👋 Goodbye!")
}

func getEnvWithDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
