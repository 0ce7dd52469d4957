package graph

import (
	"context"
	"strings"
	"sync"
)

// Handler answers a query issued against a MemoryClient.
type Handler func(cypher string, params map[string]any) (Result, error)

// MemoryClient is an in-memory Client used to test query logic without a
// running database. Queries are answered by the first handler whose marker
// occurs in the statement, then by queued results, then with an empty result.
type MemoryClient struct {
	mu           sync.Mutex
	writeCalls   []ExecutedQuery
	readCalls    []ExecutedQuery
	readResults  []Result
	writeResults []Result
	handlers     []markedHandler
	err          error
	connectivity error
	closed       bool
}

type markedHandler struct {
	marker string
	fn     Handler
}

// ExecutedQuery captures a cypher statement and parameters executed against the graph.
type ExecutedQuery struct {
	Query  string
	Params map[string]any
}

// NewMemoryClient instantiates an empty in-memory client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError configures the client to return err for subsequent calls.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return err.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// Handle routes every statement containing marker to fn.
func (m *MemoryClient) Handle(marker string, fn Handler) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, markedHandler{marker: marker, fn: fn})
	return m
}

// PushReadResult queues a result for the next unhandled ExecuteRead call.
func (m *MemoryClient) PushReadResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readResults = append(m.readResults, res)
}

// PushWriteResult queues a result for the next unhandled ExecuteWrite call.
func (m *MemoryClient) PushWriteResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeResults = append(m.writeResults, res)
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return Result{}, m.err
	}
	m.writeCalls = append(m.writeCalls, ExecutedQuery{Query: cypher, Params: cloneMap(params)})
	fn := m.handlerFor(cypher)
	if fn == nil {
		defer m.mu.Unlock()
		return pop(&m.writeResults), nil
	}
	m.mu.Unlock()
	return fn(cypher, params)
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return Result{}, m.err
	}
	m.readCalls = append(m.readCalls, ExecutedQuery{Query: cypher, Params: cloneMap(params)})
	fn := m.handlerFor(cypher)
	if fn == nil {
		defer m.mu.Unlock()
		return pop(&m.readResults), nil
	}
	m.mu.Unlock()
	return fn(cypher, params)
}

func (m *MemoryClient) handlerFor(cypher string) Handler {
	for _, h := range m.handlers {
		if strings.Contains(cypher, h.marker) {
			return h.fn
		}
	}
	return nil
}

func pop(queue *[]Result) Result {
	if len(*queue) == 0 {
		return Result{}
	}
	res := (*queue)[0]
	*queue = (*queue)[1:]
	return res
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MemoryClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// WriteCalls returns a snapshot of executed write queries.
func (m *MemoryClient) WriteCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.writeCalls...)
}

// ReadCalls returns a snapshot of executed read queries.
func (m *MemoryClient) ReadCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.readCalls...)
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
