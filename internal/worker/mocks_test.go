package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// MockPublisher implements AlertPublisher for testing
type MockPublisher struct {
	mu        sync.Mutex
	Published map[string][]models.PlayerAlert
	Err       error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Published: make(map[string][]models.PlayerAlert)}
}

func (m *MockPublisher) PublishAlerts(ctx context.Context, userID string, alerts []models.PlayerAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Published[userID] = append(m.Published[userID], alerts...)
	return nil
}

func (m *MockPublisher) Count(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Published[userID])
}

// MockClickHouseConn implements driver.Conn for testing
type MockClickHouseConn struct {
	driver.Conn

	mu         sync.Mutex
	Rows       [][]interface{}
	Sends      int
	PrepareErr error
	SendErr    error
}

func (m *MockClickHouseConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	if m.PrepareErr != nil {
		return nil, m.PrepareErr
	}
	return &MockBatch{conn: m}, nil
}

func (m *MockClickHouseConn) RowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Rows)
}

// MockBatch implements driver.Batch and commits rows to its conn on Send
type MockBatch struct {
	driver.Batch
	conn    *MockClickHouseConn
	pending [][]interface{}
	sent    bool
}

func (m *MockBatch) IsSent() bool {
	return m.sent
}

func (m *MockBatch) Rows() int {
	return len(m.pending)
}

func (m *MockBatch) Append(v ...interface{}) error {
	if len(v) == 0 {
		return errors.New("empty row")
	}
	m.pending = append(m.pending, v)
	return nil
}

func (m *MockBatch) Send() error {
	m.conn.mu.Lock()
	defer m.conn.mu.Unlock()
	if m.conn.SendErr != nil {
		return m.conn.SendErr
	}
	m.conn.Rows = append(m.conn.Rows, m.pending...)
	m.conn.Sends++
	m.sent = true
	return nil
}

func (m *MockBatch) Abort() error {
	return nil
}

// MockDDLConn records Exec calls
type MockDDLConn struct {
	driver.Conn
	Statements []string
	ExecErr    error
}

func (m *MockDDLConn) Exec(ctx context.Context, query string, args ...any) error {
	if m.ExecErr != nil {
		return m.ExecErr
	}
	m.Statements = append(m.Statements, query)
	return nil
}
