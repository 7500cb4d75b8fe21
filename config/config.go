package config

import (
	"github.com/gotify/configor"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		ListenAddr string `default:"" env:"APP_HOST"`
		Port       int    `default:"8080"  env:"APP_PORT"`
	}
	Database struct {
		Host           string `default:"127.0.0.1" env:"DB_HOST"`
		Port           string `default:"5432" env:"DB_PORT"`
		Name           string `default:"pto-bot" env:"DB_NAME"`
		User           string `default:"postgres" env:"DB_USER"`
		Password       string `default:"postgres" env:"DB_PASSWORD"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
		DebugMode      *bool  `default:"false" env:"DB_DEBUG_MODE"`
	}
	Redis struct {
		Addr string `default:"127.0.0.1:6379" env:"REDIS_ADDR"`
		DB   int    `default:"0" env:"REDIS_DB"`
	}
	Slack struct {
		BotToken      string `default:"" env:"SLACK_BOT_TOKEN"`
		SigningSecret string `default:"" env:"SLACK_SIGNING_SECRET"`
	}
	YandexGPT struct {
		IAMToken  string `default:"" env:"YA_GPT_IAM_TOKEN"`
		CatalogID string `default:"" env:"YA_GPT_CATALOG_ID"`
	}
	PTO struct {
		MaxSpanDays        int   `default:"30" env:"PTO_MAX_SPAN_DAYS"`
		ReminderEnabled    *bool `default:"true" env:"PTO_REMINDER_ENABLED"`
		ReminderAfterHours int   `default:"48" env:"PTO_REMINDER_AFTER_HOURS"`
	}
	S3 struct {
		Endpoint        string `default:"" env:"S3_ENDPOINT"`
		AccessKeyID     string `default:"" env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `default:"" env:"S3_SECRET_ACCESS_KEY"`
		BucketName      string `default:"pto-reports" env:"S3_BUCKET_NAME"`
		UseSSL          *bool  `default:"true" env:"S3_USE_SSL"`
		ReportEnabled   *bool  `default:"false" env:"S3_REPORT_ENABLED"`
	}
	Smtp struct {
		User       string `default:"" env:"SMTP_USER"`
		Password   string `default:"" env:"SMTP_PASSWORD"`
		Host       string `default:"" env:"SMTP_HOST"`
		Port       string `default:"" env:"SMTP_PORT"`
		TLSEnabled *bool  `default:"true" env:"SMTP_TLS_ENABLED"`
		HREmail    string `default:"" env:"SMTP_HR_EMAIL"`
	}
	OpsNotify struct {
		WebhookURL string `default:"" env:"OPS_NOTIFY_WEBHOOK_URL"`
	}
	Auth struct {
		JWTSecret      string `default:"" env:"AUTH_JWT_SECRET"`
		JWTExpireInSec int    `default:"86400" env:"AUTH_JWT_EXPIRE_IN_SEC"`
		AdminAPIKey    string `default:"" env:"AUTH_ADMIN_API_KEY"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() {
	if Conf != nil {
		return
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, configFiles()...)
	if err != nil {
		panic(err)
	}
	Conf = conf
}
