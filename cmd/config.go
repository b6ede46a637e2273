package main

import "fmt"

type Config struct {
	HTTPHost       string `env:"HTTP_HOST,default=localhost"`
	HTTPPort       int    `env:"HTTP_PORT,default=3000"`
	SocketHost     string `env:"SOCKET_HOST,default=localhost"`
	SocketPort     int    `env:"SOCKET_PORT,default=5000"`
	MongoURI       string `env:"MONGO_URI,default=mongodb://localhost:27017"`
	DBName         string `env:"DB_NAME,default=webchat"`
	CollectionName string `env:"COLLECTION_NAME,default=messages"`
	WebRoot        string `env:"WEB_ROOT,default=."`
	ReadBufferSize int    `env:"READ_BUFFER_SIZE,default=1024"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

func (c Config) SocketAddr() string {
	return fmt.Sprintf("%s:%d", c.SocketHost, c.SocketPort)
}
