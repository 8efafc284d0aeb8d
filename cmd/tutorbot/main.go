package main

import (
	"context"
	"log"

	"github.com/tutorhk/tutorbot/app"
	corecmd "github.com/tutorhk/tutorbot/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			a := cfg.(*app.App)
			if err := a.Bootstrap(context.Background()); err != nil {
				return nil, err
			}
			return a, nil
		},
	})
	if err != nil {
		log.Fatalf("tutorbot: %v", err)
	}
}
