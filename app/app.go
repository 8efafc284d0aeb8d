// Package app assembles the tutor bot: configuration, infrastructure
// bootstrap, and the Telegram runtime wiring.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/tutorhk/tutorbot/core/bootstrap"
	coreconfig "github.com/tutorhk/tutorbot/core/config"
	coretelegram "github.com/tutorhk/tutorbot/core/telegram"
	"github.com/tutorhk/tutorbot/core/telegram/commands"
	tghelpers "github.com/tutorhk/tutorbot/core/telegram/helpers"
	tgrouter "github.com/tutorhk/tutorbot/core/telegram/router"
	"github.com/tutorhk/tutorbot/tutor/activity"
	"github.com/tutorhk/tutorbot/tutor/classify"
	"github.com/tutorhk/tutorbot/tutor/content"
	tutorrouter "github.com/tutorhk/tutorbot/tutor/router"
	"github.com/tutorhk/tutorbot/tutor/session"
	"github.com/tutorhk/tutorbot/tutor/transport"
)

// App holds the assembled tutor application.
type App struct {
	cfg      *coreconfig.Config
	db       *sqlx.DB
	source   *content.PostgresSource
	sessions *session.Store
	classify classify.Classifier

	// The conversation router needs the bot instance, which only exists
	// once the Telegram runtime has started. It is wired in OnStart.
	router atomic.Pointer[tutorrouter.Router]
}

// Load reads and normalizes configuration from the given path.
func Load(path string) (*App, error) {
	cfg, err := coreconfig.Load(path)
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg}, nil
}

// CoreConfig exposes the embedded core configuration.
func (a *App) CoreConfig() *coreconfig.Config {
	return a.cfg
}

// Bootstrap initializes logging, the content database, and the answer
// classifier.
func (a *App) Bootstrap(ctx context.Context) error {
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:  a.cfg,
		Seeders: []bootstrap.Seeder{content.SampleSeeder()},
	})
	if err != nil {
		return err
	}
	a.db = res.DB
	a.source = content.NewPostgresSource(a.db)
	a.sessions = session.NewStore()

	cls, err := classify.NewGemini(ctx, classify.GeminiConfig{
		APIKey:  a.cfg.LLM.APIKey,
		Model:   a.cfg.LLM.Model,
		Timeout: time.Duration(a.cfg.LLM.TimeoutSeconds) * time.Second,
		Ceiling: a.cfg.Tutor.AttemptCeiling,
	})
	if err != nil {
		return fmt.Errorf("app: classifier init failed: %w", err)
	}
	a.classify = cls
	return nil
}

// TelegramRunOptions builds the bot runtime wiring: commands, middleware,
// the text route, and the OnStart hook that connects the tutor router.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	if a.db == nil || a.classify == nil {
		return coretelegram.RunOptions{}, fmt.Errorf("app: bootstrap must run before the telegram runtime")
	}

	reg := coretelegram.NewRegistry()
	// "/start" carries the greeting trigger token, so the conversation
	// router greets without a dedicated handler.
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.tutorHandler,
		Description: "同導師打招呼",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.helpHandler,
		Description: "點樣使用英文導師",
	})
	reg.RegisterCommand("/sessions", commands.Command{
		Handler:     a.sessionsHandler,
		Description: "Open session counts",
		AdminOnly:   true,
		Hidden:      true,
	})

	routes := tgrouter.CommandRoutes(reg, tgrouter.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, tgrouter.TextRoutes(reg, tgrouter.TextOptions{
		Tutor: a.tutorHandler,
	})...)

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.wireTutor(rt)
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}

func (a *App) wireTutor(rt coretelegram.Runtime) {
	messenger := transport.NewTelegram(rt.Bot, rt.Dispatcher)
	source := a.source
	ceiling := a.cfg.Tutor.AttemptCeiling

	a.router.Store(tutorrouter.New(tutorrouter.Options{
		Source:    source,
		Classify:  a.classify,
		Messenger: messenger,
		Sessions:  a.sessions,
		Triggers: tutorrouter.Triggers{
			Greeting: a.cfg.Tutor.GreetingTrigger,
			Vocab:    a.cfg.Tutor.VocabTrigger,
			Reading:  a.cfg.Tutor.ReadingTrigger,
			Reflect:  a.cfg.Tutor.ReflectTrigger,
		},
		Reading: activity.NewReading(source, a.classify, messenger, a.sessions, ceiling),
		Open:    activity.NewOpenReading(source, a.classify, messenger, a.sessions),
		Vocab:   activity.NewVocab(source, a.classify, messenger, a.sessions, ceiling),
	}))
}

// tutorHandler feeds a free-text message into the conversation router.
// The sender is enrolled on every message, so a brand-new student is
// addressable by name from their first contact. Router failures degrade
// to an apology so the student is never left without a reply.
func (a *App) tutorHandler(c tele.Context) error {
	router := a.router.Load()
	if router == nil {
		return fmt.Errorf("app: tutor router not wired")
	}

	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx := tghelpers.BuildContext(c)
	if err := a.source.EnrollStudent(ctx, sender.ID, displayName(sender)); err != nil {
		_ = tghelpers.SendText(c, activity.MsgApology)
		return err
	}
	if err := router.Handle(ctx, sender.ID, c.Text()); err != nil {
		_ = tghelpers.SendText(c, activity.MsgApology)
		return err
	}
	return nil
}

// displayName picks the name the tutor addresses the student by.
func displayName(u *tele.User) string {
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	if name := strings.TrimSpace(u.Username); name != "" {
		return name
	}
	return "同學"
}

func (a *App) helpHandler(c tele.Context) error {
	return tghelpers.SendText(c, activity.MsgHelp)
}

func (a *App) sessionsHandler(c tele.Context) error {
	text := fmt.Sprintf("reading: %d\nopen: %d\nvocab: %d",
		a.sessions.Len(session.ActivityReading),
		a.sessions.Len(session.ActivityOpen),
		a.sessions.Len(session.ActivityVocab),
	)
	return tghelpers.SendText(c, text)
}
