package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type EventKind string

const (
	EventGenesis      EventKind = "genesis"
	EventAddPatient   EventKind = "add_patient"
	EventAddDoctor    EventKind = "add_doctor"
	EventUploadRecord EventKind = "upload_record"
)

// Event is one mirrored directory or record change.
type Event struct {
	Kind          EventKind `json:"kind"`
	WalletAddress string    `json:"walletAddress"`
	Name          string    `json:"name,omitempty"`
	FileHash      string    `json:"fileHash,omitempty"`
	FileName      string    `json:"fileName,omitempty"`
	UploadedBy    string    `json:"uploadedBy,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Block links one event to its predecessor by hash.
type Block struct {
	Index     int    `json:"index"`
	Timestamp string `json:"timestamp"`
	Event     Event  `json:"event"`
	PrevHash  string `json:"prevHash"`
	Hash      string `json:"hash"`
}

var genesisPrevHash = strings.Repeat("0", 64)

func newGenesisBlock(now time.Time) Block {
	b := Block{
		Index:     0,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Event:     Event{Kind: EventGenesis, OccurredAt: now.UTC()},
		PrevHash:  genesisPrevHash,
	}
	b.Hash = b.ComputeHash()
	return b
}

func newBlock(prev Block, ev Event, now time.Time) Block {
	b := Block{
		Index:     prev.Index + 1,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Event:     ev,
		PrevHash:  prev.Hash,
	}
	b.Hash = b.ComputeHash()
	return b
}

// ComputeHash hashes the header fields and the encoded event.
func (b Block) ComputeHash() string {
	payload, _ := json.Marshal(b.Event)
	record := strconv.Itoa(b.Index) + b.Timestamp + string(payload) + b.PrevHash
	sum := sha256.Sum256([]byte(record))
	return hex.EncodeToString(sum[:])
}
