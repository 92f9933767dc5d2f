package main

import (
	"log"

	"github.com/PoluyanbIch/GoQuizBot/internal/api"
	"github.com/PoluyanbIch/GoQuizBot/internal/config"
	"github.com/PoluyanbIch/GoQuizBot/internal/service"
	"github.com/PoluyanbIch/GoQuizBot/internal/storage"
	"github.com/PoluyanbIch/GoQuizBot/internal/telegram"
)

func main() {
	cfg := config.Load()
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is required")
	}

	// Postgres, Gist, file or memory, whichever is configured first
	store, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	bank := service.LoadQuestionBank(cfg.QuestionsFile)
	profiles := service.NewProfiles(store)

	if cfg.HTTPAddr != "" {
		r := api.NewRouter(api.NewHandler(bank, profiles))
		go func() {
			log.Printf("API server starting on %s...", cfg.HTTPAddr)
			if err := r.Run(cfg.HTTPAddr); err != nil {
				log.Fatal("API server failed to start:", err)
			}
		}()
	}

	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramDebug, bank, profiles, service.PolicyConfig{
		SingleQuota:   cfg.RandomSingleQuota,
		MultipleQuota: cfg.RandomMultipleQuota,
	})
	if err != nil {
		log.Fatal(err)
	}

	log.Println("🤖 Bot is starting...")
	bot.Start()
}
