package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizarcade/internal/archive"
	"github.com/abhisek/quizarcade/internal/config"
	"github.com/abhisek/quizarcade/internal/events"
	"github.com/abhisek/quizarcade/internal/extract"
	"github.com/abhisek/quizarcade/internal/llm"
	"github.com/abhisek/quizarcade/internal/session"
	"github.com/abhisek/quizarcade/internal/store"
	"github.com/abhisek/quizarcade/internal/templates"
)

var errPostgresDSN = errors.New("postgres needs a DSN: set --db or QUIZARCADE_DB_DSN")

// deps holds everything a command needs, opened from config and flags.
type deps struct {
	cfg      *config.Config
	store    *store.Store
	sessions session.Store
	relay    *events.Relay

	closers []func() error
}

// openDeps opens the store and the session backend. Event publishing is
// wired only when withEvents is set, so one-shot commands do not dial the
// broker.
func openDeps(cmd *cobra.Command, withEvents bool) (*deps, error) {
	ctx := cmd.Context()
	cfg := config.Load()

	driver, dsn, err := resolveDB(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	st, err := store.Open(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	d := &deps{cfg: cfg, store: st, sessions: st.SessionStore()}
	d.closers = append(d.closers, st.Close)

	if cfg.Session.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			client.Close()
			d.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Session.RedisAddr, err)
		}
		d.sessions = store.NewRedisSessionStore(client, cfg.Session.RedisKey)
		d.closers = append(d.closers, client.Close)
	}

	if withEvents {
		var pub events.Publisher = events.NewLogPublisher(nil)
		if cfg.Events.AMQPURL != "" {
			rp, err := events.NewRabbitPublisher(cfg.Events.AMQPURL, cfg.Events.Queue)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: event broker unavailable, logging events instead: %v\n", err)
			} else {
				pub = rp
			}
		}
		d.relay = events.NewRelay(pub)
		d.closers = append(d.closers, pub.Close)
	}

	return d, nil
}

// Close releases resources in reverse order of acquisition.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			fmt.Fprintf(os.Stderr, "warning: close: %v\n", err)
		}
	}
}

// manager builds a session manager over the configured session store.
func (d *deps) manager() *session.Manager {
	seed := uint64(time.Now().UnixNano())
	sel := templates.NewSelector(d.store.TemplateRepo(), rand.New(rand.NewPCG(seed, seed>>1)))

	var opts []session.Option
	if d.relay != nil {
		opts = append(opts, session.WithObserver(d.relay))
	}
	return session.NewManager(d.sessions, sel, opts...)
}

// extractor builds the configured question extractor.
func (d *deps) extractor(ctx context.Context) (extract.Extractor, error) {
	switch d.cfg.Extractor.Kind {
	case "http":
		if d.cfg.Extractor.URL == "" {
			return nil, errors.New("QUIZARCADE_EXTRACT_URL is required for the http extractor")
		}
		return extract.NewHTTPExtractor(d.cfg.Extractor.URL, d.cfg.Extractor.Key), nil
	case "llm":
		cfg := d.cfg.LLM
		if err := cfg.Validate(); err != nil {
			discovered, ok := llm.DiscoverConfig()
			if !ok || os.Getenv("QUIZARCADE_LLM_PROVIDER") != "" {
				return nil, fmt.Errorf("configure an LLM provider: %w", err)
			}
			discovered.Retry = cfg.Retry
			discovered.Timeout = cfg.Timeout
			cfg = discovered
		}
		provider, err := llm.NewProvider(ctx, cfg, d.store.EventRepo())
		if err != nil {
			return nil, err
		}
		return extract.NewLLMExtractor(provider, extract.WithTimeout(cfg.Timeout)), nil
	}
	return nil, fmt.Errorf("unknown extractor %q (want http or llm)", d.cfg.Extractor.Kind)
}

// archive returns the upload archive, or a no-op one when object storage is
// not configured or unreachable.
func (d *deps) archive(ctx context.Context) archive.Archive {
	if !d.cfg.ArchiveEnabled() {
		return archive.Nop{}
	}
	a, err := archive.NewS3Archive(d.cfg.S3)
	if err == nil {
		err = a.EnsureBucket(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: upload archive disabled: %v\n", err)
		return archive.Nop{}
	}
	return a
}
