package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/joho/godotenv"
	"github.com/xsoluti-sigelo/sigelo/internal/cache"
	"github.com/xsoluti-sigelo/sigelo/internal/config"
	"github.com/xsoluti-sigelo/sigelo/internal/contaazul"
	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/env"
	"github.com/xsoluti-sigelo/sigelo/internal/errHandler"
	"github.com/xsoluti-sigelo/sigelo/internal/file"
	"github.com/xsoluti-sigelo/sigelo/internal/helper"
	"github.com/xsoluti-sigelo/sigelo/internal/oauth"
	"github.com/xsoluti-sigelo/sigelo/internal/smtp"
	"github.com/xsoluti-sigelo/sigelo/internal/stream"
)

// Essential services and resources are exposed to the application
// this makes it possible for methods to have access to these items when they need them
type Application struct {
	Config       config.Config
	DB           *database.DB
	Logger       *slog.Logger
	Mailer       *smtp.Mailer
	WG           sync.WaitGroup
	errorHandler *errHandler.ErrorRepository
	helper       *helper.HelperRepository
	Kafka        *stream.KafkaStream
	Cache        *cache.Cache
	ContaAzul    *contaazul.Client
	Google       *oauth.GoogleClient
	FileUploader *file.FileUploader
}

func NewApplication(logger *slog.Logger) (*Application, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", "error", err)
	}

	var cfg config.Config

	// config values are loaded from the .env file
	// Default values are provided for these items and these should strictly be values for development mode only
	// make sure no production-level value is exposed as default value here
	cfg.BaseURL = env.GetString("BASE_URL", "http://localhost:4444")
	cfg.HttpPort = env.GetInt("HTTP_PORT", 4444)

	cfg.Db.Dsn = env.GetString("DB_DSN", "user:pass@localhost:5432/sigelo")
	cfg.Db.Automigrate = env.GetBool("DB_AUTOMIGRATE", true)

	cfg.Jwt.SecretKey = env.GetString("JWT_SECRET_KEY", "hx3fl2awxkexaqeyqzy7tjzm4nrsibiq")

	cfg.Google.ClientID = env.GetString("GOOGLE_CLIENT_ID", "")
	cfg.Google.ClientSecret = env.GetString("GOOGLE_CLIENT_SECRET", "")
	cfg.Google.RedirectURL = env.GetString("GOOGLE_REDIRECT_URL", cfg.BaseURL+"/auth/google/callback")

	cfg.ContaAzul.ClientID = env.GetString("CONTA_AZUL_CLIENT_ID", "")
	cfg.ContaAzul.ClientSecret = env.GetString("CONTA_AZUL_CLIENT_SECRET", "")
	cfg.ContaAzul.TokenURL = env.GetString("CONTA_AZUL_TOKEN_URL", "https://auth.contaazul.com/oauth2/token")
	cfg.ContaAzul.ApiURL = env.GetString("CONTA_AZUL_API_URL", "https://api.contaazul.com")

	cfg.Redis.Addr = env.GetString("REDIS_ADDR", "localhost:6379")
	cfg.Redis.DB = env.GetInt("REDIS_DB", 0)

	// server errors won't be sent via email if the NOTIFICATIONS_EMAIL wasn't set in the .env file
	cfg.Notifications.Email = env.GetString("NOTIFICATIONS_EMAIL", "")

	cfg.Smtp.Host = env.GetString("SMTP_HOST", "example.smtp.host")
	cfg.Smtp.Port = env.GetInt("SMTP_PORT", 25)
	cfg.Smtp.Username = env.GetString("SMTP_USERNAME", "example_username")
	cfg.Smtp.Password = env.GetString("SMTP_PASSWORD", "pa55word")
	cfg.Smtp.From = env.GetString("SMTP_FROM", "Sigelo <no_reply@sigelo.com.br>")

	cfg.KafkaServers = env.GetString("KAFKA_SERVERS", "localhost:9092")

	cfg.FileUploader.ApiKey = env.GetString("CLOUDINARY_API_KEY", "")
	cfg.FileUploader.CloudName = env.GetString("CLOUDINARY_CLOUD_NAME", "")
	cfg.FileUploader.ApiSecret = env.GetString("CLOUDINARY_API_SECRET", "")

	db, err := database.New(cfg.Db.Dsn, cfg.Db.Automigrate)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	mailer, err := smtp.NewMailer(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.From)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	app := &Application{
		Config: cfg,
		DB:     db,
		Logger: logger,
		Mailer: mailer,
	}

	// the helper's error reporter is filled in after the error handler
	// exists; the two reference each other
	app.helper = helper.New(&cfg.BaseURL, &app.WG, nil)
	app.errorHandler = errHandler.New(cfg.Notifications.Email, mailer, logger, app.helper)
	app.helper.SetErrorReporter(app.errorHandler)

	app.Kafka = stream.New(cfg.KafkaServers)
	app.Cache = cache.New(cfg.Redis.Addr, cfg.Redis.DB)
	app.ContaAzul = contaazul.New(cfg.ContaAzul.ClientID, cfg.ContaAzul.ClientSecret, cfg.ContaAzul.TokenURL, cfg.ContaAzul.ApiURL, app.Cache)
	app.Google = oauth.NewGoogleClient(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	app.FileUploader = file.New(cfg.FileUploader.CloudName, cfg.FileUploader.ApiKey, cfg.FileUploader.ApiSecret)

	return app, nil
}
