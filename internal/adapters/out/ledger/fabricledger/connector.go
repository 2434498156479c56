// Package fabricledger connects the application to the order contract
// deployed on a Hyperledger Fabric network through the Fabric Gateway API.
// Each organization gets its own scoped connection with a deterministic
// Close; there is no ambient shared session. Transport failures are
// classified LedgerUnavailableError and retried with bounded backoff,
// business rejections are returned as-is and never retried.
package fabricledger

import (
	"context"
	"crypto/x509"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyperledger/fabric-gateway/pkg/client"
	gwidentity "github.com/hyperledger/fabric-gateway/pkg/identity"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/ports"
	"orderchain/internal/pkg/errs"
)

// OrgCredentials is the enrollment material of one organization's gateway
// client: its MSP ID and the X.509 certificate and key issued by the org CA.
type OrgCredentials struct {
	MSPID          string
	CertificatePEM string
	PrivateKeyPEM  string
}

// Config describes the peer endpoint and channel the connector talks to.
type Config struct {
	// PeerEndpoint is the gateway peer's gRPC address.
	PeerEndpoint string

	// GatewayPeer is the TLS server name override of the gateway peer.
	GatewayPeer string

	// TLSCertPEM is the peer's TLS CA certificate.
	TLSCertPEM string

	ChannelName   string
	ChaincodeName string

	// Credentials holds per-organization enrollment material. Connect fails
	// for actors whose organization has no entry.
	Credentials map[identity.Org]OrgCredentials

	// RetryMaxElapsed bounds the backoff retry of transient submit failures.
	RetryMaxElapsed time.Duration
}

// Connector opens per-organization gateway connections. It implements
// ports.LedgerConnector.
type Connector struct {
	cfg    Config
	logger *slog.Logger
}

// NewConnector validates the config and creates a connector.
func NewConnector(cfg Config, logger *slog.Logger) (*Connector, error) {
	if cfg.PeerEndpoint == "" {
		return nil, errs.NewValueIsRequiredError("peerEndpoint")
	}
	if cfg.ChannelName == "" {
		return nil, errs.NewValueIsRequiredError("channelName")
	}
	if cfg.ChaincodeName == "" {
		return nil, errs.NewValueIsRequiredError("chaincodeName")
	}
	if len(cfg.Credentials) == 0 {
		return nil, errs.NewValueIsRequiredError("credentials")
	}
	if cfg.RetryMaxElapsed <= 0 {
		cfg.RetryMaxElapsed = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Connector{cfg: cfg, logger: logger.With("component", "fabricledger")}, nil
}

// Connect dials the gateway peer as the actor's organization and returns a
// session bound to the order contract. The caller owns the session and must
// Close it; closing releases the underlying gRPC connection.
func (c *Connector) Connect(_ context.Context, actor identity.Actor) (ports.Ledger, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	creds, ok := c.cfg.Credentials[actor.Org()]
	if !ok {
		return nil, errs.NewAuthenticationError(
			fmt.Sprintf("no gateway credentials for organization %s", actor.Org()))
	}

	conn, err := c.dial()
	if err != nil {
		return nil, errs.NewLedgerUnavailableErrorWithCause("connect", err)
	}

	id, err := newX509Identity(creds)
	if err != nil {
		conn.Close()
		return nil, err
	}
	sign, err := newSigner(creds)
	if err != nil {
		conn.Close()
		return nil, err
	}

	gateway, err := client.Connect(
		id,
		client.WithSign(sign),
		client.WithClientConnection(conn),
		client.WithEvaluateTimeout(5*time.Second),
		client.WithEndorseTimeout(15*time.Second),
		client.WithSubmitTimeout(5*time.Second),
		client.WithCommitStatusTimeout(time.Minute),
	)
	if err != nil {
		conn.Close()
		return nil, errs.NewLedgerUnavailableErrorWithCause("connect", err)
	}

	contract := gateway.GetNetwork(c.cfg.ChannelName).GetContract(c.cfg.ChaincodeName)
	return &session{
		gateway:         gateway,
		conn:            conn,
		contract:        contract,
		retryMaxElapsed: c.cfg.RetryMaxElapsed,
	}, nil
}

// Events opens an anonymous event stream as the platform organization.
// The connector must hold platform credentials for this to work.
func (c *Connector) Events(ctx context.Context) (<-chan ports.StatusEvent, error) {
	creds, ok := c.cfg.Credentials[identity.PlatformOrg]
	if !ok {
		return nil, errs.NewAuthenticationError("no gateway credentials for the platform organization")
	}
	return c.openEventStream(ctx, creds)
}

func (c *Connector) dial() (*grpc.ClientConn, error) {
	if c.cfg.TLSCertPEM == "" {
		return grpc.NewClient(c.cfg.PeerEndpoint,
			grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM([]byte(c.cfg.TLSCertPEM)) {
		return nil, fmt.Errorf("tls certificate is not PEM encoded")
	}
	return grpc.NewClient(c.cfg.PeerEndpoint,
		grpc.WithTransportCredentials(credentials.NewClientTLSFromCert(pool, c.cfg.GatewayPeer)))
}

func newX509Identity(creds OrgCredentials) (*gwidentity.X509Identity, error) {
	cert, err := gwidentity.CertificateFromPEM([]byte(creds.CertificatePEM))
	if err != nil {
		return nil, errs.NewAuthenticationErrorWithCause("enrollment certificate is invalid", err)
	}
	id, err := gwidentity.NewX509Identity(creds.MSPID, cert)
	if err != nil {
		return nil, errs.NewAuthenticationErrorWithCause("identity creation failed", err)
	}
	return id, nil
}

func newSigner(creds OrgCredentials) (gwidentity.Sign, error) {
	key, err := gwidentity.PrivateKeyFromPEM([]byte(creds.PrivateKeyPEM))
	if err != nil {
		return nil, errs.NewAuthenticationErrorWithCause("enrollment key is invalid", err)
	}
	sign, err := gwidentity.NewPrivateKeySign(key)
	if err != nil {
		return nil, errs.NewAuthenticationErrorWithCause("signer creation failed", err)
	}
	return sign, nil
}
