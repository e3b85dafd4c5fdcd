package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"aria/apis/calendar"
	"aria/apis/gmail"
	"aria/apis/googleauth"
	"aria/assistant"
	"aria/automation/system"
	"aria/automation/web"
	"aria/automation/windows"
	"aria/config"
	"aria/eventbus"
	"aria/server"
	"aria/speech"
	"aria/task"
)

func main() {
	// .env file is optional
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded .env file")
	}

	var (
		configPath = flag.String("config", "aria_config.json", "Path to configuration file")
		listenAddr = flag.String("addr", "", "Listen address override")
		authorize  = flag.Bool("authorize-google", false, "Run the Google OAuth console flow and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	for _, warning := range cfg.Validate() {
		log.Printf("⚠️ Config: %s", warning)
	}

	if *authorize {
		runGoogleAuthorization(cfg)
		return
	}

	log.Printf("🤖 Starting %s v%s", cfg.AppName, cfg.Version)

	// Redis backs task and conversation history. Optional: the stores
	// degrade to memory-only when it is unreachable.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("⚠️ Redis unreachable at %s, history is memory-only: %v", cfg.RedisAddr, err)
			redisClient = nil
		}
		cancel()
	}

	var bus assistant.Bus
	var natsBus *eventbus.NATSBus
	if cfg.NatsURL != "" {
		natsBus, err = eventbus.NewNATSBus(eventbus.NATSConfig{URL: cfg.NatsURL})
		if err != nil {
			log.Printf("⚠️ NATS unreachable at %s, events disabled: %v", cfg.NatsURL, err)
		} else {
			bus = natsBus
			defer natsBus.Close()
		}
	}

	controllers := buildControllers(cfg)
	executor := task.NewExecutor()
	assistant.RegisterHandlers(executor, controllers)
	if controllers.Browser != nil {
		defer controllers.Browser.Close()
	}

	history := task.NewHistory(redisClient, cfg.HistoryLimit)
	convo := assistant.NewConversation(redisClient, cfg.HistoryLimit)
	aria := assistant.New(cfg, executor, history, convo, bus)

	if cfg.VoiceEnabled {
		aria.SetSpeaker(buildSpeaker(cfg))
		if transcriber := buildTranscriber(cfg); transcriber != nil {
			aria.SetTranscriber(transcriber)
		} else {
			log.Printf("⚠️ No transcription backend available, /api/v1/voice disabled")
		}
	}

	if cfg.RemindersEnabled && controllers.Calendar != nil {
		window := time.Duration(cfg.ReminderWindow) * time.Minute
		reminders, err := assistant.NewReminders(aria, controllers.Calendar, cfg.ReminderSchedule, window)
		if err != nil {
			log.Printf("⚠️ Reminders disabled: %v", err)
		} else {
			reminders.Start()
			defer reminders.Stop()
		}
	}

	srv := server.New(cfg.ListenAddr, aria, history)

	// Mirror bus events onto connected WebSocket clients.
	if natsBus != nil {
		sub, err := natsBus.Subscribe(context.Background(), func(evt eventbus.AssistantEvent) {
			srv.Hub().Broadcast(evt)
		})
		if err != nil {
			log.Printf("⚠️ Event subscription failed: %v", err)
		} else {
			defer sub.Unsubscribe()
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Printf("🛑 Received %v, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			log.Printf("❌ Server error: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Shutdown error: %v", err)
	}
	log.Printf("👋 %s stopped", cfg.AppName)
}

// runGoogleAuthorization walks the console OAuth flow once so the token
// file exists for later runs.
func runGoogleAuthorization(cfg *config.Config) {
	scopes := append(append([]string{}, gmail.Scopes...), calendar.Scopes...)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := googleauth.Authorize(ctx, cfg.CredentialsFile, cfg.TokenFile, scopes...); err != nil {
		log.Fatalf("❌ Google authorization failed: %v", err)
	}
	log.Printf("✅ Google token saved to %s", cfg.TokenFile)
}

func buildControllers(cfg *config.Config) assistant.Controllers {
	ctx := context.Background()
	controllers := assistant.Controllers{}

	sys := system.NewController(
		system.WithCommandTimeout(time.Duration(cfg.CommandTimeout)*time.Second),
		system.WithShutdownAllowed(cfg.AllowShutdown),
	)
	if cfg.AppCatalogFile != "" {
		if err := sys.LoadCatalog(cfg.AppCatalogFile); err != nil {
			log.Printf("⚠️ App catalog not loaded: %v", err)
		}
	}
	controllers.System = sys

	if runtime.GOOS == "linux" {
		backend, err := windows.NewWmctrlBackend()
		if err != nil {
			log.Printf("⚠️ Window management disabled: %v", err)
		} else {
			controllers.Windows = windows.NewManager(backend)
		}
	}

	if cfg.WebEnabled {
		controllers.Browser = web.NewBrowser(web.Options{
			Browser:     cfg.Browser,
			Headless:    cfg.Headless,
			PageTimeout: time.Duration(cfg.PageTimeout) * time.Second,
		})
	}

	if cfg.GmailEnabled {
		gm, err := gmail.NewManager(ctx, cfg.CredentialsFile, cfg.TokenFile)
		if err != nil {
			log.Printf("⚠️ Gmail disabled: %v", err)
		} else {
			controllers.Gmail = gm
		}
	}
	if cfg.CalendarEnabled {
		cal, err := calendar.NewManager(ctx, cfg.CredentialsFile, cfg.TokenFile)
		if err != nil {
			log.Printf("⚠️ Calendar disabled: %v", err)
		} else {
			controllers.Calendar = cal
		}
	}
	return controllers
}

func buildSpeaker(cfg *config.Config) speech.Speaker {
	backends := []speech.Speaker{}
	if cfg.OpenAIAPIKey != "" {
		backends = append(backends, speech.NewOpenAISpeaker(cfg.OpenAIAPIKey, cfg.TTSVoice))
	}
	backends = append(backends, speech.NewEspeakSpeaker(cfg.Language))
	return speech.NewSpeakerChain(backends...)
}

// buildTranscriber assembles the speech-to-text chain: Whisper when an
// API key is present, then an optional local command fallback.
func buildTranscriber(cfg *config.Config) speech.Transcriber {
	backends := []speech.Transcriber{}
	if cfg.OpenAIAPIKey != "" {
		backends = append(backends, speech.NewWhisperTranscriber(cfg.OpenAIAPIKey, cfg.Language))
	}
	if cfg.SttCommand != "" {
		backends = append(backends, speech.NewCommandTranscriber(cfg.SttCommand))
	}
	if len(backends) == 0 {
		return nil
	}
	return speech.NewTranscriberChain(backends...)
}
