package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
)

type Config struct {
	Env      string `yaml:"env" env-default:"local"`
	Telegram struct {
		ApiKey   string  `yaml:"api_key" env-default:""`
		AdminIds []int64 `yaml:"admin_ids" env-default:""`
		BotName  string  `yaml:"bot_name" env-default:"ClipRateBot"`
		Enabled  bool    `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	Mongo struct {
		Enabled         bool   `yaml:"enabled" env-default:"false"`
		Host            string `yaml:"host" env-default:"127.0.0.1"`
		Port            string `yaml:"port" env-default:"27017"`
		User            string `yaml:"user" env-default:"admin"`
		Password        string `yaml:"password" env-default:"pass"`
		Database        string `yaml:"database" env-default:""`
		ConnectRetries  int    `yaml:"connect_retries" env-default:"5"`
		PersistSessions bool   `yaml:"persist_sessions" env-default:"false"`
	} `yaml:"mongo"`
	Rating struct {
		MinScore         int64 `yaml:"min_score" env-default:"1"`
		MaxScore         int64 `yaml:"max_score" env-default:"10"`
		MinCommentLength int   `yaml:"min_comment_length" env-default:"15"`
	} `yaml:"rating"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"9100"`
		ApiKey string `yaml:"key" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
