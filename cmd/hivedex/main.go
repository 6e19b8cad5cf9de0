package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"hivedex/internal/bookmark"
	"hivedex/internal/cache"
	"hivedex/internal/config"
	"hivedex/internal/jobs"
	"hivedex/internal/logging"
	"hivedex/internal/metrics"
	"hivedex/internal/model"
	"hivedex/internal/post"
	"hivedex/internal/score"
	"hivedex/internal/store"
)

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		os.Exit(run(cmd, cmdInit))
	case "build":
		os.Exit(run(cmd, cmdBuild))
	case "score":
		os.Exit(run(cmd, cmdScore))
	case "batch":
		os.Exit(run(cmd, cmdBatch))
	case "bookmark":
		os.Exit(run(cmd, cmdBookmark))
	default:
		printHelp()
	}
}

func printHelp() {
	fmt.Println("Usage: hivedex <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./hivedex.yaml")
	fmt.Println("  build       Normalize one raw record into its ordered fields")
	fmt.Println("  score       Compute trending/hot scores for one root post")
	fmt.Println("  batch       Build and score a file of records concurrently")
	fmt.Println("  bookmark    Validate and apply a bookmark operation")
}

func run(cmd string, f func() error) int {
	metrics.IncCommandRun(cmd)
	if err := f(); err != nil {
		metrics.IncCommandError(cmd)
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func mustLogger(cfg config.Config) zerolog.Logger {
	return logging.New(cfg.Logging.Level, cfg.Logging.Console)
}

func scoreConfig(cfg config.Config) score.Config {
	return score.Config{
		VoteWeight:        cfg.Scoring.VoteWeight,
		InteractionWeight: cfg.Scoring.InteractionWeight,
		ReblogWeight:      cfg.Scoring.ReblogWeight,
		CommentWeight:     cfg.Scoring.CommentWeight,
		ReblogDivisor:     cfg.Scoring.ReblogDivisor,
		CommentDivisor:    cfg.Scoring.CommentDivisor,
		TrendingTimescale: cfg.Scoring.TrendingTimescale,
		HotFactor:         cfg.Scoring.HotFactor,
	}
}

// reblogCounter opens the store-backed counter, wrapped in the Redis cache
// when enabled.
func reblogCounter(cfg config.Config, st *store.Store) score.ReblogCounter {
	if !cfg.Redis.Enabled {
		return st
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	return cache.NewCachedReblogCounter(st, client, cfg.Redis.TTL)
}

func loadPost(path string) (*model.Post, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p model.Post
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", path, err)
	}
	return &p, nil
}

func cmdInit() error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./hivedex.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	if err := config.Save(*path, config.Default()); err != nil {
		return err
	}
	fmt.Println("Config written to:", *path)
	return nil
}

func cmdBuild() error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	cfgPath := fs.String("config", "./hivedex.yaml", "config path")
	in := fs.String("in", "", "raw record JSON file")
	id := fs.Int64("id", 0, "post id")
	level := fs.String("level", string(model.LevelInsert), "write level (insert|payout|update|empty for vote)")
	promoted := fs.String("promoted", "", "pending promotion amount")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	p, err := loadPost(*in)
	if err != nil {
		return err
	}
	var promo *float64
	if *promoted != "" {
		v, err := strconv.ParseFloat(*promoted, 64)
		if err != nil {
			return fmt.Errorf("promoted: %w", err)
		}
		promo = &v
	}

	builder := post.NewBuilder()
	builder.CommunityOverride = cfg.Scoring.CommunityOverride
	fields, err := builder.ToFields(p, *id, model.WriteLevel(*level), promo)
	if err != nil {
		return err
	}
	for _, f := range fields {
		fmt.Printf("%s=%v\n", f.Name, f.Value)
	}
	return nil
}

func cmdScore() error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	cfgPath := fs.String("config", "./hivedex.yaml", "config path")
	in := fs.String("in", "", "raw record JSON file")
	id := fs.Int64("id", 0, "post id")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	p, err := loadPost(*in)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	calc := score.NewCalculator(scoreConfig(cfg), reblogCounter(cfg, st))
	scores, err := calc.PostScores(context.Background(), *id, p)
	if err != nil {
		return err
	}
	fmt.Printf("trending=%f hot=%f\n", scores.Trending, scores.Hot)
	return nil
}

// batchRecord is the wire format of one line of a batch input file.
type batchRecord struct {
	PostID   int64       `json:"post_id"`
	Level    string      `json:"level"`
	Promoted *float64    `json:"promoted"`
	Post     *model.Post `json:"post"`
}

func cmdBatch() error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	cfgPath := fs.String("config", "./hivedex.yaml", "config path")
	in := fs.String("in", "", "JSON-lines file of records")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	log := mustLogger(cfg)
	metrics.StartServer(cfg.Metrics.Addr)

	b, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	var recs []jobs.Record
	dec := json.NewDecoder(bytes.NewReader(b))
	for dec.More() {
		var br batchRecord
		if err := dec.Decode(&br); err != nil {
			return fmt.Errorf("decode batch line %d: %w", len(recs)+1, err)
		}
		recs = append(recs, jobs.Record{
			PostID:   br.PostID,
			Post:     br.Post,
			Level:    model.WriteLevel(br.Level),
			Promoted: br.Promoted,
		})
	}

	st, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	builder := post.NewBuilder()
	builder.CommunityOverride = cfg.Scoring.CommunityOverride
	calc := score.NewCalculator(scoreConfig(cfg), reblogCounter(cfg, st))
	pipeline := jobs.New(cfg.Pipeline, builder, calc, log)

	results := pipeline.BuildBatch(context.Background(), recs)
	enc := json.NewEncoder(os.Stdout)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Error().Int64("post_id", r.PostID).Err(r.Err).Msg("record failed")
			continue
		}
		out := map[string]any{"post_id": r.PostID, "fields": r.Fields}
		if r.Scored {
			out["trending"] = r.Scores.Trending
			out["hot"] = r.Scores.Hot
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	log.Info().Int("records", len(recs)).Int("failed", failed).Msg("batch done")
	return nil
}

func cmdBookmark() error {
	fs := flag.NewFlagSet("bookmark", flag.ExitOnError)
	cfgPath := fs.String("config", "./hivedex.yaml", "config path")
	account := fs.String("account", "", "signing account")
	op := fs.String("op", "", "bookmark op JSON")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	return bookmark.Process(context.Background(), st, *account, []byte(*op), time.Now().UTC())
}
