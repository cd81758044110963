package app

import (
	"fmt"
	"strings"

	"smartmatch/internal/config"
	"smartmatch/internal/delivery/http/routes"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName: c.Config.App.AppName,
	})

	routes.NewRegistry(c.Config, routes.Deps{
		Logger:       c.Logger,
		Orchestrator: c.Orchestrator,
		Breakers:     c.Breakers,
		Cache:        c.Cache,
		DB:           c.DB,
		History:      c.History,
		Metrics:      c.Metrics,
		Hub:          c.Hub,
		JWT:          c.JWT,
	}).Register(f)

	return &App{Fiber: f, Container: c}
}

func Bootstrap(cfg config.Config) (*App, func() error, error) {
	container, err := NewContainer(cfg)
	if err != nil {
		return nil, nil, err
	}

	go container.Hub.Run()

	app := New(container)
	return app, container.Close, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
