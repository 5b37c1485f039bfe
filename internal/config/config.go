package config

import "os"

type Config struct {
	Port       string
	MenuPath   string
	OrdersDir  string
	UploadsDir string

	// Zalo deep-link target: phone number preferred, OA id as fallback.
	ZaloPhone string
	ZaloOAID  string

	// Google Sheets order log (service account).
	SheetsClientEmail   string
	SheetsPrivateKey    string
	SheetsSpreadsheetID string
	SheetsRange         string

	// Primary notification: "webhook" or "smtp".
	PrimarySink     string
	WebhookEndpoint string

	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPass      string
	EmailFromName string
	EmailTo       string

	// Key for the live order feed websocket; empty disables the feed.
	FeedKey string
}

func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "5000"),
		MenuPath:   getEnv("MENU_PATH", "menu.json"),
		OrdersDir:  getEnv("ORDERS_DIR", "orders"),
		UploadsDir: getEnv("UPLOADS_DIR", "orders/payment-proofs"),

		ZaloPhone: getEnv("ZALO_PHONE", ""),
		ZaloOAID:  getEnv("ZALO_OA_ID", ""),

		SheetsClientEmail:   getEnv("GOOGLE_SERVICE_ACCOUNT_EMAIL", ""),
		SheetsPrivateKey:    getEnv("GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY", ""),
		SheetsSpreadsheetID: getEnv("GOOGLE_SHEETS_ID", ""),
		SheetsRange:         getEnv("GOOGLE_SHEETS_RANGE", "Orders!A:H"),

		PrimarySink:     getEnv("PRIMARY_SINK", "webhook"),
		WebhookEndpoint: getEnv("WEBHOOK_ENDPOINT", ""),

		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPass:      getEnv("SMTP_PASS", ""),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "Lolibub"),
		EmailTo:       getEnv("EMAIL_TO", "thestoriesguys@gmail.com"),

		FeedKey: getEnv("FEED_KEY", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
