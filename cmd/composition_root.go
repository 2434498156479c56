package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	httpserver "orderchain/internal/adapters/in/http"
	"orderchain/internal/adapters/in/ledgerevents"
	"orderchain/internal/adapters/out/ledger/fabricledger"
	"orderchain/internal/adapters/out/ledger/memledger"
	"orderchain/internal/adapters/out/postgres"
	"orderchain/internal/adapters/out/wallet"
	"orderchain/internal/core/application/usecases/commands"
	"orderchain/internal/core/application/usecases/queries"
	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/services"
	"orderchain/internal/core/ports"
	"orderchain/internal/jobs"
	"orderchain/internal/pkg/errs"
)

type CompositionRoot struct {
	config          Config
	gormDB          *gorm.DB
	uowFactory      postgres.GormUnitOfWorkFactory
	connector       ports.LedgerConnector
	eventSource     ports.LedgerEventSource
	platform        identity.Actor
	settlementDelay time.Duration
	logger          *slog.Logger
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	platform, err := identity.NewActor(identity.PlatformOrg, cfg.PlatformCompanyCode)
	if err != nil {
		return nil, err
	}

	returnWindow, err := time.ParseDuration(cfg.ReturnWindow)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("returnWindow", err)
	}
	settlementDelay, err := time.ParseDuration(cfg.SettlementDelay)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("settlementDelay", err)
	}

	connector, eventSource, err := buildLedger(cfg, returnWindow, settlementDelay, logger)
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		config:          cfg,
		gormDB:          gormDB,
		uowFactory:      *postgres.NewGormUnitOfWorkFactory(gormDB),
		connector:       connector,
		eventSource:     eventSource,
		platform:        platform,
		settlementDelay: settlementDelay,
		logger:          logger,
	}, nil
}

// buildLedger picks the ledger backend from configuration. The in-process
// network and the Fabric gateway both serve connections and the committed
// event stream.
func buildLedger(
	cfg Config,
	returnWindow, settlementDelay time.Duration,
	logger *slog.Logger,
) (ports.LedgerConnector, ports.LedgerEventSource, error) {
	switch cfg.LedgerMode {
	case "", "mem":
		contract, err := services.NewOrderContract(returnWindow, settlementDelay)
		if err != nil {
			return nil, nil, err
		}
		ledger := memledger.New(contract)
		return ledger, ledger, nil

	case "fabric":
		fabricCfg, err := buildFabricConfig(cfg)
		if err != nil {
			return nil, nil, err
		}
		connector, err := fabricledger.NewConnector(fabricCfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return connector, connector, nil

	default:
		return nil, nil, errs.NewValueIsInvalidError(
			fmt.Sprintf("ledger mode %q is not one of mem, fabric", cfg.LedgerMode))
	}
}

func buildFabricConfig(cfg Config) (fabricledger.Config, error) {
	tlsCert, err := os.ReadFile(cfg.FabricTLSCertPath)
	if err != nil {
		return fabricledger.Config{}, errs.NewValueIsInvalidErrorWithCause("fabricTLSCertPath", err)
	}

	credentials := make(map[identity.Org]fabricledger.OrgCredentials)
	for _, entry := range []struct {
		org   identity.Org
		mspID string
		cert  string
		key   string
	}{
		{identity.PlatformOrg, cfg.FabricPlatformMSPID, cfg.FabricPlatformCert, cfg.FabricPlatformKey},
		{identity.SellerOrg, cfg.FabricSellerMSPID, cfg.FabricSellerCert, cfg.FabricSellerKey},
		{identity.ShipperOrg, cfg.FabricShipperMSPID, cfg.FabricShipperCert, cfg.FabricShipperKey},
	} {
		if entry.mspID == "" {
			continue
		}
		cert, err := os.ReadFile(entry.cert)
		if err != nil {
			return fabricledger.Config{}, errs.NewValueIsInvalidErrorWithCause(
				"certificate for "+entry.org.String(), err)
		}
		key, err := os.ReadFile(entry.key)
		if err != nil {
			return fabricledger.Config{}, errs.NewValueIsInvalidErrorWithCause(
				"private key for "+entry.org.String(), err)
		}
		credentials[entry.org] = fabricledger.OrgCredentials{
			MSPID:          entry.mspID,
			CertificatePEM: string(cert),
			PrivateKeyPEM:  string(key),
		}
	}

	return fabricledger.Config{
		PeerEndpoint:  cfg.FabricPeerEndpoint,
		GatewayPeer:   cfg.FabricGatewayPeer,
		TLSCertPEM:    string(tlsCert),
		ChannelName:   cfg.FabricChannelName,
		ChaincodeName: cfg.FabricChaincodeName,
		Credentials:   credentials,
	}, nil
}

func (c *CompositionRoot) CreateApproveActorCommandHandler() commands.ApproveActorCommandHandler {
	var f commands.ActorUoWFactory = FuncActorUoWFactory(func() commands.ActorUoW {
		return c.uowFactory.Create()
	})
	return commands.NewApproveActorCommandHandler(f, wallet.NewLocalEnroller(c.logger), c.logger)
}

func (c *CompositionRoot) CreateSplitOrderCommandHandler() commands.SplitOrderCommandHandler {
	var f commands.SplitUoWFactory = FuncSplitUoWFactory(func() commands.SplitUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSplitOrderCommandHandler(f, c.connector, c.platform, c.logger)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(c.connector, c.logger)
}

func (c *CompositionRoot) CreateEnqueueSyncTaskCommandHandler() commands.EnqueueSyncTaskCommandHandler {
	var f commands.SyncUoWFactory = FuncSyncUoWFactory(func() commands.SyncUoW {
		return c.uowFactory.Create()
	})
	return commands.NewEnqueueSyncTaskCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateApplyInventorySyncCommandHandler() commands.ApplyInventorySyncCommandHandler {
	var f commands.SyncUoWFactory = FuncSyncUoWFactory(func() commands.SyncUoW {
		return c.uowFactory.Create()
	})
	return commands.NewApplyInventorySyncCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateSettleOrdersCommandHandler() commands.SettleOrdersCommandHandler {
	return commands.NewSettleOrdersCommandHandler(c.connector, c.platform, c.settlementDelay, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.connector)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.connector)
}

func (c *CompositionRoot) CreateGetPublicStatusQueryHandler() queries.GetPublicStatusQueryHandler {
	return queries.NewGetPublicStatusQueryHandler(c.connector, c.platform)
}

func (c *CompositionRoot) CreateDecryptSellerViewQueryHandler() queries.DecryptSellerViewQueryHandler {
	return queries.NewDecryptSellerViewQueryHandler(c.connector, c.uowFactory.Create().ActorRepository())
}

func (c *CompositionRoot) CreateDecryptShipperViewQueryHandler() queries.DecryptShipperViewQueryHandler {
	return queries.NewDecryptShipperViewQueryHandler(c.connector, c.uowFactory.Create().ActorRepository())
}

func (c *CompositionRoot) CreateHTTPServer() *httpserver.Server {
	return httpserver.NewServer(
		c.CreateApproveActorCommandHandler(),
		c.CreateSplitOrderCommandHandler(),
		c.CreateTransitionOrderCommandHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateListOrdersQueryHandler(),
		c.CreateGetPublicStatusQueryHandler(),
		c.CreateDecryptSellerViewQueryHandler(),
		c.CreateDecryptShipperViewQueryHandler(),
	)
}

func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	batchSize, err := strconv.Atoi(c.config.SyncBatchSize)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("syncBatchSize", err)
	}

	schedules := jobs.Schedules{
		Settlement:    c.config.SettlementSchedule,
		InventorySync: c.config.InventorySyncSchedule,
		SyncBatchSize: batchSize,
	}

	settleHandler := c.CreateSettleOrdersCommandHandler()
	syncHandler := c.CreateApplyInventorySyncCommandHandler()
	return jobs.NewJobManager(settleHandler, syncHandler, schedules, c.logger), nil
}

func (c *CompositionRoot) CreateLedgerEventSubscriber() *ledgerevents.Subscriber {
	return ledgerevents.NewSubscriber(c.eventSource, c.CreateEnqueueSyncTaskCommandHandler(), c.logger)
}

type FuncActorUoWFactory func() commands.ActorUoW

func (f FuncActorUoWFactory) Create() commands.ActorUoW {
	return f()
}

type FuncSplitUoWFactory func() commands.SplitUoW

func (f FuncSplitUoWFactory) Create() commands.SplitUoW {
	return f()
}

type FuncSyncUoWFactory func() commands.SyncUoW

func (f FuncSyncUoWFactory) Create() commands.SyncUoW {
	return f()
}
