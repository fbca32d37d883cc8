package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"sessionbot/internal/common/clock"
	"sessionbot/internal/common/uuid"
	telegramHandler "sessionbot/internal/handlers/telegram"
	"sessionbot/internal/messagewindow"
	sessionRepo "sessionbot/internal/repositories/session"
	userRepo "sessionbot/internal/repositories/user"
	"sessionbot/internal/services/notifier"
	"sessionbot/internal/services/scheduler"
	sessionService "sessionbot/internal/services/session"
	"sessionbot/internal/telegram"
)

func main() {
	// Load .env if present, the real environment wins
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env file: %v", err)
	}

	location, err := time.LoadLocation(getEnv("BOT_TIMEZONE", "Local"))
	if err != nil {
		log.Fatalf("Invalid BOT_TIMEZONE: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})

	// Test Redis connection
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Initialize repositories
	sessions, err := sessionRepo.NewRedis(&sessionRepo.Config{
		RedisClient: redisClient,
		Location:    location,
	})
	if err != nil {
		log.Fatalf("Failed to create session repository: %v", err)
	}

	users, err := userRepo.NewRedis(&userRepo.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		log.Fatalf("Failed to create user repository: %v", err)
	}

	// Initialize Telegram client
	botToken := getEnv("BOT_TOKEN", "")
	if botToken == "" {
		log.Fatal("BOT_TOKEN environment variable is required")
	}

	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Fatalf("Failed to connect to Telegram: %v", err)
	}

	sender, err := telegram.NewBotSender(api)
	if err != nil {
		log.Fatalf("Failed to create sender: %v", err)
	}

	windows := messagewindow.NewTracker()

	// Initialize services
	notifierSvc, err := notifier.New(&notifier.Config{
		Sender:  sender,
		Windows: windows,
	})
	if err != nil {
		log.Fatalf("Failed to create notifier: %v", err)
	}

	sessionSvc, err := sessionService.New(&sessionService.Config{
		SessionRepo:   sessions,
		UserRepo:      users,
		Clock:         &clock.DefaultClock{},
		UUIDGenerator: uuid.New(),
		Location:      location,
	})
	if err != nil {
		log.Fatalf("Failed to create session service: %v", err)
	}

	reminders, err := scheduler.New(&scheduler.Config{
		SessionRepo: sessions,
		Notifier:    notifierSvc,
		Clock:       &clock.DefaultClock{},
		Interval:    getEnvDuration("REMINDER_INTERVAL", scheduler.DefaultInterval),
		Lookahead:   getEnvDuration("REMINDER_LOOKAHEAD", scheduler.DefaultLookahead),
	})
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	bot, err := telegramHandler.New(&telegramHandler.Config{
		API:      api,
		Sessions: sessionSvc,
		Users:    users,
		Notifier: notifierSvc,
		Sender:   sender,
		Windows:  windows,
		AdminIDs: parseAdminIDs(getEnv("ADMIN_IDS", "")),
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	go reminders.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Start(ctx)
	}()

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	select {
	case <-sc:
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Bot stopped: %v", err)
		}
	}

	cancel()
	log.Println("Bot has been shut down")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return d
}

func parseAdminIDs(raw string) []int64 {
	if raw == "" {
		return nil
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			log.Fatalf("Invalid ADMIN_IDS entry %q: %v", part, err)
		}
		ids = append(ids, id)
	}
	return ids
}
