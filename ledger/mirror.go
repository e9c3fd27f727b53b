package ledger

import (
	"log/slog"
	"sync"
	"time"
)

// Mirror records directory and record events on the ledger without ever
// blocking or failing the caller.
type Mirror interface {
	AddPatient(walletAddress, name string)
	AddDoctor(walletAddress, name string)
	UploadRecord(patientAddress, fileHash, fileName, uploadedBy string)
	Close()
}

// Appender is the write side of a Chain.
type Appender interface {
	Append(ev Event) (Block, error)
}

// AsyncMirror queues events and appends them on a single worker goroutine.
// A full queue drops the event.
type AsyncMirror struct {
	chain  Appender
	log    *slog.Logger
	queue  chan Event
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewAsyncMirror(chain Appender, queueSize int, log *slog.Logger) *AsyncMirror {
	if queueSize <= 0 {
		queueSize = 1
	}
	m := &AsyncMirror{
		chain: chain,
		log:   log,
		queue: make(chan Event, queueSize),
	}
	m.wg.Add(1)
	go m.run()
	return m
}

func (m *AsyncMirror) AddPatient(walletAddress, name string) {
	m.enqueue(Event{Kind: EventAddPatient, WalletAddress: walletAddress, Name: name})
}

func (m *AsyncMirror) AddDoctor(walletAddress, name string) {
	m.enqueue(Event{Kind: EventAddDoctor, WalletAddress: walletAddress, Name: name})
}

func (m *AsyncMirror) UploadRecord(patientAddress, fileHash, fileName, uploadedBy string) {
	m.enqueue(Event{
		Kind:          EventUploadRecord,
		WalletAddress: patientAddress,
		FileHash:      fileHash,
		FileName:      fileName,
		UploadedBy:    uploadedBy,
	})
}

// Close stops accepting events and waits for the queue to drain.
func (m *AsyncMirror) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *AsyncMirror) enqueue(ev Event) {
	ev.OccurredAt = time.Now().UTC()

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		m.log.Warn("ledger mirror closed, dropping event", "kind", ev.Kind, "wallet", ev.WalletAddress)
		return
	}

	select {
	case m.queue <- ev:
	default:
		m.log.Warn("ledger mirror queue full, dropping event", "kind", ev.Kind, "wallet", ev.WalletAddress)
	}
}

func (m *AsyncMirror) run() {
	defer m.wg.Done()
	for ev := range m.queue {
		b, err := m.chain.Append(ev)
		if err != nil {
			m.log.Error("ledger append failed", "kind", ev.Kind, "wallet", ev.WalletAddress, "error", err)
			continue
		}
		m.log.Debug("ledger event recorded", "kind", ev.Kind, "index", b.Index, "hash", b.Hash)
	}
}

// NopMirror is used when the ledger is disabled.
type NopMirror struct{}

func (NopMirror) AddPatient(string, string)                   {}
func (NopMirror) AddDoctor(string, string)                    {}
func (NopMirror) UploadRecord(string, string, string, string) {}
func (NopMirror) Close()                                      {}
