package email_notifier_config

import (
	"github.com/NordCoder/goodcookie/internal/config"
)

var defaults = config.Defaults{
	"app.name": "goodcookie/email-notifier",
	"app.env":  "dev",

	"kafka_in.brokers":        []string{"kafka:9092"},
	"kafka_in.topic":          "goodcookie.password-reset",
	"kafka_in.group_id":       "email-notifier",
	"kafka_in.from_beginning": false,

	"smtp.addr":        "localhost:1025",
	"smtp.from":        "noreply@goodcookie.app",
	"smtp.user":        "",
	"smtp.password":    "",
	"smtp.use_tls":     false,
	"smtp.timeout":     "5s",
	"smtp.subj_prefix": "[GoodCookie]",

	"server.metrics_addr": ":8084",
}

func Load(path string) (*Config, error) {
	v, err := config.Read(path, defaults.Merge(config.Postgres(5, 1), config.Observability("email-notifier")))
	if err != nil {
		return nil, err
	}
	return config.Decode[Config](v)
}
