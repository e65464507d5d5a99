package internal

import (
	"fmt"
	"time"
)

type Config struct {
	LogLevel       string        `env:"LOG_LEVEL,required=true"`
	BadgerFilepath string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string        `env:"BLUGE_FILEPATH,required=true"`
	RedisAddr      string        `env:"REDIS_ADDR,required=true"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB"`
	PollTimeout    time.Duration `env:"BROKER_POLL_TIMEOUT,required=true"`
	MetricInterval time.Duration `env:"METRIC_INTERVAL,required=true"`
	GCInterval     time.Duration `env:"STORAGE_GC_INTERVAL,required=true"`

	HistoryLimit      *int   `env:"HISTORY_LIMIT"`
	CensoredWordsPath string `env:"CENSORED_WORDS_PATH,required=true"`
	CharReplacement   string `env:"CHARACTER_REPLACEMENT,required=true"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
