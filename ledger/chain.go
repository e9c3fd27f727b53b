package ledger

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const heightKey = "height_latest"

// ErrBlockNotFound is returned for an index past the chain tip.
var ErrBlockNotFound = errors.New("block not found")

// Chain is an append-only hash chain persisted in LevelDB.
//
// Keys:
//
//	block_<n>             block JSON by index
//	hash_<h>              block index by hash
//	wallet_<addr>_<n>     block index, one per event touching addr
//	height_latest         index of the tip
type Chain struct {
	db  *leveldb.DB
	mu  sync.Mutex
	now func() time.Time
}

// Open opens or creates the chain stored at path.
func Open(path string) (*Chain, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger at %s: %w", path, err)
	}
	return newChain(db)
}

// OpenStorage opens a chain on an explicit LevelDB storage, such as
// storage.NewMemStorage().
func OpenStorage(stor storage.Storage) (*Chain, error) {
	db, err := leveldb.Open(stor, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return newChain(db)
}

func newChain(db *leveldb.DB) (*Chain, error) {
	c := &Chain{db: db, now: time.Now}
	if _, ok, err := c.height(); err != nil {
		db.Close()
		return nil, err
	} else if !ok {
		if err := c.write(newGenesisBlock(c.now())); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to write genesis block: %w", err)
		}
	}
	return c, nil
}

func (c *Chain) Close() error {
	return c.db.Close()
}

// Append links ev to the tip and returns the new block.
func (c *Chain) Append(ev Event) (Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, _, err := c.height()
	if err != nil {
		return Block{}, err
	}
	tip, err := c.Block(h)
	if err != nil {
		return Block{}, err
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = c.now().UTC()
	}

	b := newBlock(tip, ev, c.now())
	if err := c.write(b); err != nil {
		return Block{}, err
	}
	return b, nil
}

// Height returns the index of the tip block.
func (c *Chain) Height() (int, error) {
	h, _, err := c.height()
	return h, err
}

func (c *Chain) Block(index int) (Block, error) {
	data, err := c.db.Get([]byte(blockKey(index)), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return Block{}, ErrBlockNotFound
		}
		return Block{}, err
	}
	var b Block
	if err := json.Unmarshal(data, &b); err != nil {
		return Block{}, fmt.Errorf("decode block_%d: %w", index, err)
	}
	return b, nil
}

func (c *Chain) BlockByHash(hash string) (Block, error) {
	data, err := c.db.Get([]byte("hash_"+hash), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return Block{}, ErrBlockNotFound
		}
		return Block{}, err
	}
	index, err := strconv.Atoi(string(data))
	if err != nil {
		return Block{}, fmt.Errorf("decode hash index: %w", err)
	}
	return c.Block(index)
}

// EventsFor returns the blocks touching walletAddress, oldest first.
func (c *Chain) EventsFor(walletAddress string) ([]Block, error) {
	iter := c.db.NewIterator(util.BytesPrefix([]byte(walletPrefix(walletAddress))), nil)
	defer iter.Release()

	blocks := []Block{}
	for iter.Next() {
		index, err := strconv.Atoi(string(iter.Value()))
		if err != nil {
			return nil, fmt.Errorf("decode wallet index: %w", err)
		}
		b, err := c.Block(index)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// VerifyReport describes the result of walking the chain.
type VerifyReport struct {
	Height   int    `json:"height"`
	Valid    bool   `json:"valid"`
	BrokenAt int    `json:"brokenAt,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Verify recomputes every hash and checks every back link.
func (c *Chain) Verify() (VerifyReport, error) {
	h, _, err := c.height()
	if err != nil {
		return VerifyReport{}, err
	}

	report := VerifyReport{Height: h, Valid: true}
	var prev Block
	for i := 0; i <= h; i++ {
		b, err := c.Block(i)
		if err != nil {
			return report.broken(i, fmt.Sprintf("missing block: %v", err)), nil
		}
		if b.Index != i {
			return report.broken(i, "index mismatch"), nil
		}
		if b.Hash != b.ComputeHash() {
			return report.broken(i, "hash mismatch"), nil
		}
		if i == 0 {
			if b.PrevHash != genesisPrevHash {
				return report.broken(i, "bad genesis link"), nil
			}
		} else if b.PrevHash != prev.Hash {
			return report.broken(i, "broken link to previous block"), nil
		}
		prev = b
	}
	return report, nil
}

func (r VerifyReport) broken(index int, reason string) VerifyReport {
	r.Valid = false
	r.BrokenAt = index
	r.Reason = reason
	return r
}

func (c *Chain) write(b Block) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	index := strconv.Itoa(b.Index)
	batch.Put([]byte(blockKey(b.Index)), data)
	batch.Put([]byte("hash_"+b.Hash), []byte(index))
	if b.Event.WalletAddress != "" {
		batch.Put([]byte(fmt.Sprintf("%s%010d", walletPrefix(b.Event.WalletAddress), b.Index)), []byte(index))
	}
	if b.Event.UploadedBy != "" && b.Event.UploadedBy != b.Event.WalletAddress {
		batch.Put([]byte(fmt.Sprintf("%s%010d", walletPrefix(b.Event.UploadedBy), b.Index)), []byte(index))
	}
	batch.Put([]byte(heightKey), []byte(index))
	return c.db.Write(batch, nil)
}

func (c *Chain) height() (int, bool, error) {
	data, err := c.db.Get([]byte(heightKey), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	h, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, false, fmt.Errorf("decode height: %w", err)
	}
	return h, true, nil
}

func blockKey(index int) string {
	return fmt.Sprintf("block_%d", index)
}

// walletPrefix hex-encodes the address so one wallet's prefix never
// matches the keys of another.
func walletPrefix(walletAddress string) string {
	return "wallet_" + hex.EncodeToString([]byte(walletAddress)) + "_"
}
