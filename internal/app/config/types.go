package config

type DriverConfig struct {
	MongoDB  MongoDB
	Redis    Redis
	Logger   Logger
	RabbitMQ RabbitMQ
	Minio    Minio
}

type MongoDB struct {
	Port     string
	Host     string
	Username string
	Password string
	DbName   string
}

type Redis struct {
	Host     string
	Port     string
	Password string
}

type Logger struct {
	Level               string
	OutputFileName      string
	OutputErrorFileName string
}

type RabbitMQ struct {
	Port     string
	Host     string
	Username string
	Password string
}

type Minio struct {
	Port     string
	Host     string
	Username string
	Password string
	UseSSL   bool
}
