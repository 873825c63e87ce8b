package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/business/evaluation"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/business/similarity"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/business/trending"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/domain"
	psqlRepo "github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/internal/repository/postgres"
	redisRepo "github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/internal/repository/redis"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/config"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/database"
	redisdb "github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/database/redis"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/logger"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/metrics"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/utils"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// deps is everything a pipeline command needs after bootstrap.
type deps struct {
	cfg         *config.Config
	db          *gorm.DB
	redisClient *redis.Client
}

func (d *deps) close() {
	if err := redisdb.CloseRedisClient(d.redisClient); err != nil {
		logger.Error("Redis close error", "error", err)
	}
}

func bootstrap(needRedis bool) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.App.Environment)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	d := &deps{cfg: cfg, db: db}

	if needRedis {
		d.redisClient, err = redisdb.NewRedisClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to Redis: %w", err)
		}
	}

	return d, nil
}

func newTrendingCmd() *cobra.Command {
	var windows []string

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Recompute time-decayed trending scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := bootstrap(true)
			if err != nil {
				return err
			}
			defer d.close()

			eventRepo := psqlRepo.NewEventRepository(d.db)
			productRepo := psqlRepo.NewProductRepository(d.db)
			trendingRepo := psqlRepo.NewTrendingRepository(d.db)
			cache := redisRepo.NewCacheRepository(d.redisClient)

			svc := trending.NewService(eventRepo, productRepo, trendingRepo, cache, d.cfg.Recommender)

			tw := make([]domain.TimeWindow, 0, len(windows))
			for _, w := range windows {
				tw = append(tw, domain.TimeWindow(w))
			}

			stats, err := svc.Run(cmd.Context(), tw)
			if err != nil {
				return err
			}

			for window, rows := range stats.RowsPerWindow {
				fmt.Printf("window %s: %d rows\n", window, rows)
			}
			fmt.Printf("skipped events: %d\nduration: %s\n", stats.SkippedEvents, stats.Duration)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&windows, "window", nil, "time windows to compute (7d, 30d); default both")

	return cmd
}

func newSimilarityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "similarity",
		Short: "Rebuild the item-to-item similarity table",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := bootstrap(true)
			if err != nil {
				return err
			}
			defer d.close()

			eventRepo := psqlRepo.NewEventRepository(d.db)
			similarityRepo := psqlRepo.NewSimilarityRepository(d.db)
			cache := redisRepo.NewCacheRepository(d.redisClient)

			svc := similarity.NewService(eventRepo, similarityRepo, cache, d.cfg.Recommender)

			stats, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("users: %d\nproducts: %d\nedges: %d\nbatches: %d\nskipped events: %d\nduration: %s\n",
				stats.Users, stats.Products, stats.Edges, stats.Batches, stats.SkippedEvents, stats.Duration)

			return nil
		},
	}
}

func newEvaluateCmd() *cobra.Command {
	var (
		testDays int
		kValues  []int
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score the similarity model against held-out events",
		Long: "Splits the event log temporally: everything before the test window trains, " +
			"add-to-cart and purchase events inside it are ground truth.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if testDays <= 0 {
				return fmt.Errorf("test-days must be positive")
			}

			d, err := bootstrap(false)
			if err != nil {
				return err
			}

			eventRepo := psqlRepo.NewEventRepository(d.db)
			similarityRepo := psqlRepo.NewSimilarityRepository(d.db)

			harness := evaluation.NewHarness(eventRepo, similarityRepo)

			testEnd := time.Now().UTC()
			testStart := testEnd.AddDate(0, 0, -testDays)

			result, err := harness.Evaluate(cmd.Context(), testStart, testEnd, kValues)
			if err != nil {
				return err
			}

			fmt.Print(result.Format())

			return nil
		},
	}

	cmd.Flags().IntVar(&testDays, "test-days", 7, "length of the held-out test window in days")
	cmd.Flags().IntSliceVar(&kValues, "k", []int{5, 10, 20}, "cutoffs to report metrics at")

	return cmd
}

func newAdminTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Mint a bearer token for the admin endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Admin.JWTSecret == "" {
				return fmt.Errorf("ADMIN_JWT_SECRET is not set")
			}

			token, err := utils.GenerateAdminToken(subject, cfg.Admin.JWTSecret, ttl)
			if err != nil {
				return err
			}

			fmt.Println(token)

			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "pipeline", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")

	return cmd
}

func main() {
	root := &cobra.Command{
		Use:   "pipeline",
		Short: "ShopSmart offline recommendation pipelines",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.AddCommand(
		newTrendingCmd(),
		newSimilarityCmd(),
		newEvaluateCmd(),
		newAdminTokenCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
