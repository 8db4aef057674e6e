package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"gm-rewards/db"
	"gm-rewards/models"

	"github.com/syndtr/goleveldb/leveldb"
)

var errReadOnly = errors.New("write attempted in read-only transaction")

// Transactor abstracts the storage layer from the business logic.
// Update runs fn as one block: every write it stages commits together or not at all.
type Transactor interface {
	Update(fn func(tx *Tx) error) error
	View(fn func(tx *Tx) error) error
}

// Store serializes every state change through a single writer and commits each one as a block
type Store struct {
	db       *db.LevelDB
	mu       sync.RWMutex
	onCommit []func(events []models.Event)
}

// NewStore creates and returns a new Store over the given LevelDB
func NewStore(ldb *db.LevelDB) *Store {
	return &Store{db: ldb}
}

// OnCommit registers fn to receive the events of every committed block, in block order
func (s *Store) OnCommit(fn func(events []models.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommit = append(s.onCommit, fn)
}

// Update runs fn against a fresh block. Staged writes are discarded if fn fails.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	height, err := s.height()
	if err != nil {
		return err
	}
	tx := newTx(s.db, height+1, false)
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.putJSON(keyBlock, tx.block); err != nil {
		return err
	}
	if err := s.db.Write(tx.batch()); err != nil {
		return fmt.Errorf("commit block %d: %w", tx.block, err)
	}

	for _, sink := range s.onCommit {
		sink(tx.events)
	}
	return nil
}

// View runs fn against the last committed block without allowing writes
func (s *Store) View(fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	height, err := s.height()
	if err != nil {
		return err
	}
	return fn(newTx(s.db, height, true))
}

// Block returns the number of the last committed block
func (s *Store) Block() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height()
}

func (s *Store) height() (uint64, error) {
	var h uint64
	data, err := s.db.Get([]byte(keyBlock))
	if db.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(data, &h); err != nil {
		return 0, err
	}
	return h, nil
}

// Tx is a staging overlay over the committed state. Reads see the overlay first.
type Tx struct {
	db       *db.LevelDB
	block    uint64
	readOnly bool
	pending  map[string][]byte
	deleted  map[string]bool
	events   []models.Event
}

func newTx(ldb *db.LevelDB, block uint64, readOnly bool) *Tx {
	return &Tx{
		db:       ldb,
		block:    block,
		readOnly: readOnly,
		pending:  make(map[string][]byte),
		deleted:  make(map[string]bool),
	}
}

// Block returns the block number this transaction executes in
func (t *Tx) Block() uint64 {
	return t.block
}

// Emit records an event to be delivered once the block commits
func (t *Tx) Emit(e models.Event) {
	e.Block = t.block
	t.events = append(t.events, e)
}

// Events returns the events emitted so far
func (t *Tx) Events() []models.Event {
	return t.events
}

func (t *Tx) getRaw(key string) ([]byte, bool, error) {
	if t.deleted[key] {
		return nil, false, nil
	}
	if v, ok := t.pending[key]; ok {
		return v, true, nil
	}
	data, err := t.db.Get([]byte(key))
	if db.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

func (t *Tx) getJSON(key string, v interface{}) (bool, error) {
	data, ok, err := t.getRaw(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (t *Tx) putJSON(key string, v interface{}) error {
	if t.readOnly {
		return errReadOnly
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	delete(t.deleted, key)
	t.pending[key] = data
	return nil
}

func (t *Tx) has(key string) (bool, error) {
	_, ok, err := t.getRaw(key)
	return ok, err
}

func (t *Tx) delete(key string) error {
	if t.readOnly {
		return errReadOnly
	}
	delete(t.pending, key)
	t.deleted[key] = true
	return nil
}

func (t *Tx) batch() *leveldb.Batch {
	b := new(leveldb.Batch)
	for k, v := range t.pending {
		b.Put([]byte(k), v)
	}
	for k := range t.deleted {
		b.Delete([]byte(k))
	}
	return b
}
