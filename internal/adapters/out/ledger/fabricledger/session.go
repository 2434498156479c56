package fabricledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hyperledger/fabric-gateway/pkg/client"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"orderchain/internal/pkg/errs"
)

// session is one organization's connection to the order contract.
type session struct {
	gateway         *client.Gateway
	conn            *grpc.ClientConn
	contract        *client.Contract
	retryMaxElapsed time.Duration

	mu     sync.Mutex
	closed bool
}

// Submit endorses and submits a transaction through consensus and returns
// its transaction ID. Transient transport failures are retried with
// exponential backoff for a bounded elapsed time; contract rejections
// abort immediately.
func (s *session) Submit(ctx context.Context, fn string, args ...string) (string, error) {
	if err := s.check(); err != nil {
		return "", err
	}

	policy := backoff.WithContext(newPolicy(s.retryMaxElapsed), ctx)
	var txID string
	submit := func() error {
		id, err := s.submitOnce(ctx, fn, args...)
		if err != nil {
			classified := classify(fn, err)
			if errors.Is(classified, errs.ErrLedgerUnavailable) {
				return classified
			}
			return backoff.Permanent(classified)
		}
		txID = id
		return nil
	}
	if err := backoff.Retry(submit, policy); err != nil {
		return "", err
	}
	return txID, nil
}

func (s *session) submitOnce(ctx context.Context, fn string, args ...string) (string, error) {
	proposal, err := s.contract.NewProposal(fn, client.WithArguments(args...))
	if err != nil {
		return "", err
	}
	transaction, err := proposal.EndorseWithContext(ctx)
	if err != nil {
		return "", err
	}
	commit, err := transaction.SubmitWithContext(ctx)
	if err != nil {
		return "", err
	}
	commitStatus, err := commit.StatusWithContext(ctx)
	if err != nil {
		return "", err
	}
	if !commitStatus.Successful {
		return "", fmt.Errorf("transaction %s failed to commit with status %d",
			commitStatus.TransactionID, int32(commitStatus.Code))
	}
	return commitStatus.TransactionID, nil
}

// Evaluate runs a read-only query on the gateway peer.
func (s *session) Evaluate(ctx context.Context, fn string, args ...string) ([]byte, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	proposal, err := s.contract.NewProposal(fn, client.WithArguments(args...))
	if err != nil {
		return nil, classify(fn, err)
	}
	result, err := proposal.EvaluateWithContext(ctx)
	if err != nil {
		return nil, classify(fn, err)
	}
	return result, nil
}

// Close releases the gateway and its gRPC connection. Safe to call once.
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.gateway.Close()
	return s.conn.Close()
}

func (s *session) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errs.NewLedgerUnavailableError("closed session")
	}
	return nil
}

func newPolicy(maxElapsed time.Duration) backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = maxElapsed
	return policy
}

// classify separates transport failures from contract rejections. Only the
// former become LedgerUnavailableError; everything else reaches the caller
// as the business error the contract raised. Endorsement failures carry the
// chaincode's rejection verbatim and are never retried.
func classify(operation string, err error) error {
	var endorseErr *client.EndorseError
	if errors.As(err, &endorseErr) {
		return err
	}

	var submitErr *client.SubmitError
	var statusErr *client.CommitStatusError
	if errors.As(err, &submitErr) || errors.As(err, &statusErr) {
		return errs.NewLedgerUnavailableErrorWithCause(operation, err)
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted:
			return errs.NewLedgerUnavailableErrorWithCause(operation, err)
		}
	}
	return err
}
