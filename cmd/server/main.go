package main

import (
	"log"
	"net/http"
	"time"

	"github.com/thetechguyfromvietnam/lolibub/internal/config"
	"github.com/thetechguyfromvietnam/lolibub/internal/menu"
	"github.com/thetechguyfromvietnam/lolibub/internal/notify"
	"github.com/thetechguyfromvietnam/lolibub/internal/router"
	"github.com/thetechguyfromvietnam/lolibub/internal/storage"
	"github.com/thetechguyfromvietnam/lolibub/internal/ws"
)

func main() {
	cfg := config.Load()

	provider := menu.NewProvider(cfg.MenuPath)
	proofs := storage.NewUploadStore(cfg.UploadsDir)
	orders := storage.NewOrderLog(cfg.OrdersDir)

	hub := ws.NewHub()
	go hub.Run()

	// One client for every remote sink; no hidden singletons
	httpClient := &http.Client{Timeout: 15 * time.Second}

	var primary notify.Sink
	switch cfg.PrimarySink {
	case "smtp":
		if cfg.SMTPHost != "" && cfg.SMTPUser != "" {
			primary = notify.NewSMTPSink(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFromName, cfg.EmailTo)
		}
	default:
		if cfg.WebhookEndpoint != "" {
			primary = notify.NewWebhookSink(httpClient, cfg.WebhookEndpoint, cfg.EmailTo)
		}
	}
	if primary == nil {
		log.Println("WARN: no primary notification sink configured; order submissions will be rejected")
	}

	var auxiliary []notify.Sink
	if cfg.SheetsClientEmail != "" && cfg.SheetsPrivateKey != "" && cfg.SheetsSpreadsheetID != "" {
		sheets, err := notify.NewSheetsSink(httpClient, cfg.SheetsClientEmail, cfg.SheetsPrivateKey, cfg.SheetsSpreadsheetID, cfg.SheetsRange)
		if err != nil {
			log.Printf("WARN: sheets sink disabled: %v", err)
		} else {
			auxiliary = append(auxiliary, sheets)
		}
	}
	if cfg.FeedKey != "" {
		auxiliary = append(auxiliary, notify.NewFeedSink(hub))
	}

	fanout := notify.NewFanout(primary, notify.NewZaloLink(cfg.ZaloPhone, cfg.ZaloOAID), auxiliary...)

	r := router.New(cfg, provider, fanout, proofs, orders, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
