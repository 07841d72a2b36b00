package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agent-chat-be/internal/bootstrap"
	"agent-chat-be/internal/config"
	"agent-chat-be/internal/server"
	"agent-chat-be/internal/tracer"
	"agent-chat-be/pkg/database"

	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database (optional)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		var err error
		gormDB, err = database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start Background Services
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		container.WebSocketHub.Run(ctx)
	}()

	// 6. Run Server
	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			log.Printf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	<-hubDone

	// Let in-flight replies finish publishing before the relay goes away.
	drained := make(chan struct{})
	go func() {
		container.ChatService.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		log.Println("Timed out waiting for in-flight generations")
	}

	if err := container.Relay.Close(); err != nil {
		log.Printf("Relay close error: %v", err)
	}
}
