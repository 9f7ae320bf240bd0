package main

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"tickerbot/internal/reddit"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate connections to Postgres, Redis, Kafka and the Reddit API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context())
		},
	}
}

func runCheck(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("🔍 Validating service connections...")

	// Test PostgreSQL connection
	fmt.Print("📊 Testing PostgreSQL connection... ")
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name)

	pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, err := pgx.Connect(pgCtx, dbURL)
	if err != nil {
		fmt.Printf("❌ Failed: %v\n", err)
	} else {
		var result string
		err = conn.QueryRow(pgCtx, "SELECT 'PostgreSQL connection successful'").Scan(&result)
		if err != nil {
			fmt.Printf("❌ Query failed: %v\n", err)
		} else {
			fmt.Printf("✅ %s\n", result)
		}
		conn.Close(pgCtx)
	}
	cancel()

	// Test Redis connection
	fmt.Print("🗄️  Testing Redis connection... ")
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := rdb.Ping(redisCtx).Err(); err != nil {
		fmt.Printf("❌ Failed: %v\n", err)
	} else {
		fmt.Println("✅ Redis connection successful")
	}
	cancel()
	rdb.Close()

	// Test Kafka connection
	fmt.Print("📨 Testing Kafka connection... ")
	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Version = sarama.V2_6_0_0
	kafkaConfig.Net.DialTimeout = 10 * time.Second

	client, err := sarama.NewClient(cfg.Kafka.Brokers, kafkaConfig)
	if err != nil {
		fmt.Printf("❌ Failed: %v\n", err)
	} else {
		brokers := client.Brokers()
		fmt.Printf("✅ Connected to %d Kafka brokers\n", len(brokers))
		client.Close()
	}

	// Test Reddit API
	fmt.Print("🤖 Testing Reddit API... ")
	api := reddit.NewClient(&cfg.Reddit)
	apiCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	subs, err := api.RisingSubmissions(apiCtx, 1)
	if err != nil {
		fmt.Printf("❌ Failed: %v\n", err)
	} else {
		fmt.Printf("✅ Fetched %d rising submissions\n", len(subs))
	}
	cancel()

	fmt.Println("🎉 Connection validation complete!")
	return nil
}
