package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"livre/config"
	"livre/domain/orderbook"
	"livre/infra/journal"
	"livre/infra/kafka"
	"livre/infra/outbox"
	"livre/infra/sequence"
	"livre/jobs/broadcaster"
	"livre/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	// ---------------- Journal ----------------

	jrnl, err := journal.Open(journal.Config{
		Dir:         cfg.JournalDir,
		SegmentSize: cfg.SegmentSize,
		Sync:        cfg.JournalSync,
	})
	if err != nil {
		logger.Fatal("journal init failed", zap.Error(err))
	}
	defer jrnl.Close()

	// ---------------- Outbox ----------------

	ob, err := outbox.Open(cfg.OutboxDir)
	if err != nil {
		logger.Fatal("outbox init failed", zap.Error(err))
	}
	defer ob.Close()

	// ---------------- Recovery ----------------

	book := orderbook.NewOrderbook()
	seqGen := sequence.New(0)

	if err := service.Recover(cfg.JournalDir, cfg.SnapshotDir, book, seqGen, logger); err != nil {
		logger.Fatal("recovery failed", zap.Error(err))
	}

	// ---------------- Service ----------------

	var feed *kafka.Producer
	if cfg.KafkaEnabled {
		feed = kafka.NewProducer(cfg.KafkaBrokers, cfg.TradeTopic)
		defer feed.Close()
	}

	svc := service.NewOrderService(book, seqGen, jrnl, ob, feed, logger)

	// ---------------- Background Jobs ----------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.StartSnapshotJob(ctx, cfg.SnapshotDir, cfg.SnapshotEvery)

	if cfg.KafkaEnabled {
		bc, err := broadcaster.New(ob, cfg.KafkaBrokers, cfg.EventTopic, cfg.BroadcastEvery, logger)
		if err != nil {
			logger.Fatal("broadcaster init failed", zap.Error(err))
		}
		defer bc.Close()
		go bc.Run(ctx)
	}

	logger.Info("engine running",
		zap.String("journal", cfg.JournalDir),
		zap.Int("resting_orders", svc.OrderCount()),
	)
	printTop(svc)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func printTop(svc *service.OrderService) {
	bid, bidOK, ask, askOK := svc.BookTop()
	switch {
	case bidOK && askOK:
		fmt.Printf("top of book: %d / %d\n", bid, ask)
	case bidOK:
		fmt.Printf("top of book: %d / -\n", bid)
	case askOK:
		fmt.Printf("top of book: - / %d\n", ask)
	default:
		fmt.Println("top of book: empty")
	}
}
