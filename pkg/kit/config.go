package kit

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

// LoadConfig fills cfg from an optional .env file and the environment.
// On --help it prints usage and returns conf.ErrHelpWanted.
func LoadConfig(prefix string, cfg any) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	help, err := conf.Parse(prefix, cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
		}
		return err
	}
	return nil
}

// ConfigString renders cfg with secrets masked, for the startup log line.
func ConfigString(cfg any) string {
	out, err := conf.String(cfg)
	if err != nil {
		return err.Error()
	}
	return out
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
