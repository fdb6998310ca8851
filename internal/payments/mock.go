package payments

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/angelmondragon/threadline-backend/pkg/enums"
)

// Call records one request received by the mock gateway.
type Call struct {
	Operation      Operation
	Reference      string
	AmountMinor    int64
	IdempotencyKey string
}

// MockGateway approves every request unless a failure is injected. It backs
// the "mock" provider in development and doubles as the test gateway.
type MockGateway struct {
	mu       sync.Mutex
	calls    []Call
	failures map[Operation]error
	block    map[Operation]chan struct{}
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		failures: map[Operation]error{},
		block:    map[Operation]chan struct{}{},
	}
}

func (m *MockGateway) Provider() enums.PaymentProvider {
	return enums.PaymentProviderMock
}

// FailWith makes every subsequent op call return err. A nil err clears it.
func (m *MockGateway) FailWith(op Operation, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// BlockUntil makes op wait until release is closed or the call context ends.
func (m *MockGateway) BlockUntil(op Operation, release chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block[op] = release
}

// Calls returns a copy of the recorded calls.
func (m *MockGateway) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount counts recorded calls for op.
func (m *MockGateway) CallCount(op Operation) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Operation == op {
			n++
		}
	}
	return n
}

func (m *MockGateway) Authorize(ctx context.Context, req AuthorizeRequest) (Result, error) {
	if err := validateAuthorize(req); err != nil {
		return Result{}, err
	}
	if err := m.record(ctx, Call{Operation: OperationAuthorize, AmountMinor: req.AmountMinor, IdempotencyKey: req.IdempotencyKey}); err != nil {
		return Result{}, err
	}
	return Result{Reference: "mock_" + uuid.NewString(), Mocked: true}, nil
}

func (m *MockGateway) Capture(ctx context.Context, req Request) (Result, error) {
	return m.referenced(ctx, OperationCapture, req)
}

func (m *MockGateway) Cancel(ctx context.Context, req Request) (Result, error) {
	return m.referenced(ctx, OperationCancel, req)
}

func (m *MockGateway) Refund(ctx context.Context, req Request) (Result, error) {
	return m.referenced(ctx, OperationRefund, req)
}

func (m *MockGateway) referenced(ctx context.Context, op Operation, req Request) (Result, error) {
	if err := validateReference(req); err != nil {
		return Result{}, err
	}
	call := Call{Operation: op, Reference: req.Reference, AmountMinor: req.AmountMinor, IdempotencyKey: req.IdempotencyKey}
	if err := m.record(ctx, call); err != nil {
		return Result{}, err
	}
	return Result{Reference: req.Reference, Mocked: true}, nil
}

func (m *MockGateway) record(ctx context.Context, call Call) error {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	failure := m.failures[call.Operation]
	release := m.block[call.Operation]
	m.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return failure
}
