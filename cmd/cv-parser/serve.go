package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/cv-parser/internal/async"
	"github.com/joseph-ayodele/cv-parser/internal/export"
	"github.com/joseph-ayodele/cv-parser/internal/runtime"
	"github.com/joseph-ayodele/cv-parser/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve synchronous Parse over gRPC and consume queued parse requests",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("no-consumer", false, "do not consume the parse request topic")
	serveCmd.Flags().Bool("migrate", false, "create missing tables before serving")
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, logger := setup(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}
	noConsumer, _ := cmd.Flags().GetBool("no-consumer")
	migrate, _ := cmd.Flags().GetBool("migrate")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := runtime.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open resources: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = res.Close(closeCtx)
	}()
	if migrate {
		if err := res.DB.Migrate(ctx); err != nil {
			return err
		}
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.GRPCAddr, err)
	}
	grpcServer, healthServer := server.New(
		server.NewParserServer(res.Processor, logger),
		server.NewExportServer(export.NewService(res.Skills, res.Keywords, logger), logger),
		logger,
	)

	queue := async.NewProcessorQueue(res.Processor, logger,
		async.WithWorkers(cfg.Worker.Workers),
		async.WithQueueSize(cfg.Worker.QueueSize),
		async.WithProcessTimeout(cfg.Worker.JobTimeout),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("cv-parser listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	if !noConsumer {
		consumer, err := async.NewConsumer(async.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.ParseTopic,
			GroupID: cfg.Kafka.GroupID,
		}, queue, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			defer func() { _ = consumer.Close() }()
			return consumer.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		grpcServer.GracefulStop()

		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.JobTimeout)
		defer cancel()
		queue.Shutdown(drainCtx)
		return nil
	})

	return g.Wait()
}
