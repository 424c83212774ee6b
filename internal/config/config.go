package config

type Config struct {
	BaseURL  string
	HttpPort int
	Db       struct {
		Dsn         string
		Automigrate bool
	}
	Jwt struct {
		SecretKey string
	}
	Google struct {
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}
	ContaAzul struct {
		ClientID     string
		ClientSecret string
		TokenURL     string
		ApiURL       string
	}
	Redis struct {
		Addr string
		DB   int
	}
	Notifications struct {
		Email string
	}
	Smtp struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	FileUploader struct {
		CloudName string
		ApiKey    string
		ApiSecret string
	}
	KafkaServers string
}
