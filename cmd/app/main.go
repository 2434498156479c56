package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"orderchain/cmd"
	"orderchain/internal/adapters/out/postgres/actorrepo"
	"orderchain/internal/adapters/out/postgres/inventoryrepo"
	"orderchain/internal/adapters/out/postgres/syncrepo"
)

func main() {
	configs := getConfigs()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	gormDB := mustOpenDatabase(configs)

	app, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		log.Fatalf("Failed to build composition root: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobManager, err := app.CreateJobManager()
	if err != nil {
		log.Fatalf("Failed to build job manager: %v", err)
	}
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	subscriber := app.CreateLedgerEventSubscriber()
	go func() {
		if err := subscriber.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("ledger event subscriber stopped", "error", err)
		}
	}()

	startWebServer(ctx, app, configs.HTTPPort, logger)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:   goDotEnvVariable("HTTP_PORT"),
		DBHost:     goDotEnvVariable("DB_HOST"),
		DBPort:     goDotEnvVariable("DB_PORT"),
		DBUser:     goDotEnvVariable("DB_USER"),
		DBPassword: goDotEnvVariable("DB_PASSWORD"),
		DBName:     goDotEnvVariable("DB_NAME"),
		DBSslMode:  goDotEnvVariable("DB_SSLMODE"),

		LedgerMode:          goDotEnvVariable("LEDGER_MODE"),
		FabricPeerEndpoint:  goDotEnvVariable("FABRIC_PEER_ENDPOINT"),
		FabricGatewayPeer:   goDotEnvVariable("FABRIC_GATEWAY_PEER"),
		FabricTLSCertPath:   goDotEnvVariable("FABRIC_TLS_CERT_PATH"),
		FabricChannelName:   goDotEnvVariable("FABRIC_CHANNEL_NAME"),
		FabricChaincodeName: goDotEnvVariable("FABRIC_CHAINCODE_NAME"),
		FabricPlatformMSPID: goDotEnvVariable("FABRIC_PLATFORM_MSP_ID"),
		FabricPlatformCert:  goDotEnvVariable("FABRIC_PLATFORM_CERT_PATH"),
		FabricPlatformKey:   goDotEnvVariable("FABRIC_PLATFORM_KEY_PATH"),
		FabricSellerMSPID:   goDotEnvVariable("FABRIC_SELLER_MSP_ID"),
		FabricSellerCert:    goDotEnvVariable("FABRIC_SELLER_CERT_PATH"),
		FabricSellerKey:     goDotEnvVariable("FABRIC_SELLER_KEY_PATH"),
		FabricShipperMSPID:  goDotEnvVariable("FABRIC_SHIPPER_MSP_ID"),
		FabricShipperCert:   goDotEnvVariable("FABRIC_SHIPPER_CERT_PATH"),
		FabricShipperKey:    goDotEnvVariable("FABRIC_SHIPPER_KEY_PATH"),

		PlatformCompanyCode: goDotEnvVariable("PLATFORM_COMPANY_CODE"),

		ReturnWindow:    goDotEnvVariable("RETURN_WINDOW"),
		SettlementDelay: goDotEnvVariable("SETTLEMENT_DELAY"),

		SettlementSchedule:    goDotEnvVariable("SETTLEMENT_SCHEDULE"),
		InventorySyncSchedule: goDotEnvVariable("INVENTORY_SYNC_SCHEDULE"),
		SyncBatchSize:         goDotEnvVariable("SYNC_BATCH_SIZE"),
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func mustOpenDatabase(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&actorrepo.ActorDTO{},
		&inventoryrepo.ItemDTO{},
		&inventoryrepo.LevelDTO{},
		&inventoryrepo.MirrorOrderDTO{},
		&inventoryrepo.MirrorLineDTO{},
		&syncrepo.TaskDTO{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	return gormDB
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, port string, logger *slog.Logger) {
	e := echo.New()
	app.CreateHTTPServer().RegisterRoutes(e)

	go func() {
		<-ctx.Done()
		if err := e.Shutdown(context.Background()); err != nil {
			logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil {
		logger.Info("HTTP server stopped", "error", err)
	}
}
