package cmd

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// LedgerMode selects the ledger backend: "mem" for the in-process
	// network, "fabric" for a Hyperledger Fabric gateway.
	LedgerMode string

	FabricPeerEndpoint   string
	FabricGatewayPeer    string
	FabricTLSCertPath    string
	FabricChannelName    string
	FabricChaincodeName  string
	FabricPlatformMSPID  string
	FabricPlatformCert   string
	FabricPlatformKey    string
	FabricSellerMSPID    string
	FabricSellerCert     string
	FabricSellerKey      string
	FabricShipperMSPID   string
	FabricShipperCert    string
	FabricShipperKey     string

	PlatformCompanyCode string

	ReturnWindow    string
	SettlementDelay string

	SettlementSchedule    string
	InventorySyncSchedule string
	SyncBatchSize         string
}
