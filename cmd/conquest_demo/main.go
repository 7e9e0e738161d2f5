package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/conquest/internal/config"
	"github.com/mitchelldurbincs/conquest/internal/game"
	"github.com/mitchelldurbincs/conquest/internal/game/core"
	"github.com/mitchelldurbincs/conquest/internal/game/events"
	"github.com/mitchelldurbincs/conquest/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/conquest/internal/render"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	players := flag.Int("players", 0, "Number of players (0 to use config default)")
	maxTurns := flag.Int("max-turns", 0, "Stop after this many turns (0 to use config default)")
	seed := flag.Int64("seed", 0, "Random seed (0 to use config, then the clock)")
	out := flag.String("out", "", "Write the final map to this PNG file")
	verbose := flag.Bool("v", false, "Log every event")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()
	if *players == 0 {
		*players = cfg.Demo.Players
	}
	if *maxTurns == 0 {
		*maxTurns = cfg.Demo.MaxTurns
	}
	if *seed == 0 {
		*seed = cfg.Game.DiceSeed
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	world, err := core.LoadWorldFile(cfg.Game.MapFile)
	if err != nil {
		log.Fatal().Err(err).Str("map_file", cfg.Game.MapFile).Msg("Failed to load map")
	}

	bus := events.NewEventBus(log.Logger)
	if *verbose {
		eventLog := subscribers.NewLoggerSubscriber("demo-events", log.Logger, zerolog.DebugLevel)
		eventLog.SetEventFilter(cfg.Server.EventLog.Types)
		eventLog.SetDevMode(cfg.Server.EventLog.DevMode)
		bus.Subscribe(eventLog)
	}
	conquests := 0
	bus.SubscribeFunc(events.TypeTerritoryConquered, func(events.Event) { conquests++ })

	ids := make([]string, *players)
	for i := range ids {
		ids[i] = fmt.Sprintf("bot-%d", i+1)
	}

	rng := rand.New(rand.NewSource(*seed))
	e, _, err := game.NewGame(game.GameConfig{
		GameID:        "demo",
		World:         world,
		Rng:           rng,
		Logger:        log.Logger,
		EventBus:      bus,
		FillMinTroops: cfg.Game.FillMinTroops,
		FillMaxTroops: cfg.Game.FillMaxTroops,
	}, ids, true)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start game")
	}

	summary := play(e, rng, *maxTurns)
	gs := e.State()
	log.Info().
		Int64("seed", *seed).
		Int("turns", gs.TurnCount).
		Int("commands", summary.Commands).
		Int("rejected", summary.Rejected).
		Int("conquests", conquests).
		Int("trades", gs.TradeCount).
		Str("winner", gs.Winner).
		Bool("finished", gs.Over).
		Msg("Demo game complete")
	for _, id := range gs.TurnOrder {
		p := gs.Players[id]
		log.Info().
			Str("player_id", id).
			Str("colour", p.Colour).
			Int("territories", len(p.Territories)).
			Bool("eliminated", p.Eliminated).
			Msg("Standing")
	}

	if *out != "" {
		if err := writeMap(*out, e, cfg.Render); err != nil {
			log.Fatal().Err(err).Str("path", *out).Msg("Failed to write map")
		}
		log.Info().Str("path", *out).Msg("Map written")
	}
}

func writeMap(path string, e *game.Engine, rc config.RenderConfig) error {
	r, err := render.New(e.World(), render.Options{
		Width:      rc.Width,
		Height:     rc.Height,
		Background: render.RGB(rc.Background),
		Neutral:    render.RGB(rc.Neutral),
		Legend:     true,
	}, log.Logger)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Render(f, e.State()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
