package iocache

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
)

// badgerHeaderSize is the size of the version and timestamp prefix on each value.
const badgerHeaderSize = 12

// BadgerStore is an embedded key/value cache backed by Badger.
type BadgerStore struct {
	db   *badger.DB
	path string
}

var _ contract.CacheStore = &BadgerStore{} // Compile-time check

// NewBadgerStore opens a Badger directory. An empty path uses the default
// location in the home directory.
func NewBadgerStore(path string) (*BadgerStore, error) {
	if path == "" {
		path = GetBadgerDirPath()
	}
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	return openBadger(opts, path)
}

// NewInMemoryBadgerStore opens a Badger store that never touches disk.
func NewInMemoryBadgerStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openBadger(opts, "")
}

func openBadger(opts badger.Options, path string) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store at %q: %w", path, err)
	}
	return &BadgerStore{db: db, path: path}, nil
}

// Get retrieves a value by key. A missing key returns sql.ErrNoRows so that
// callers can treat every backend the same way.
func (bs *BadgerStore) Get(key string) ([]byte, int, int64, error) {
	var raw []byte
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, 0, 0, sql.ErrNoRows
	}
	if err != nil {
		return nil, 0, 0, err
	}
	return decodeBadgerValue(raw)
}

// Set stores a value with its version and timestamp.
func (bs *BadgerStore) Set(key string, value []byte, version int, timestamp int64) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), encodeBadgerValue(value, version, timestamp))
	})
}

// GetStatus walks the keyspace to report entry counts and time range.
func (bs *BadgerStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(schema.BadgerBackend),
		Connected: bs.db != nil,
	}
	if bs.db == nil {
		return status, nil
	}

	var oldest, newest int64
	err := bs.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				if len(val) < badgerHeaderSize {
					return nil
				}
				ts := int64(binary.BigEndian.Uint64(val[4:badgerHeaderSize]))
				if status.TotalEntries == 0 || ts < oldest {
					oldest = ts
				}
				if ts > newest {
					newest = ts
				}
				status.TotalEntries++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return status, fmt.Errorf("failed to scan badger store: %w", err)
	}

	if status.TotalEntries > 0 {
		status.OldestEntryTime = time.Unix(oldest, 0)
		status.LastEntryTime = time.Unix(newest, 0)
	}
	lsm, vlog := bs.db.Size()
	status.TableSizeBytes = lsm + vlog
	return status, nil
}

// Close closes the Badger database.
func (bs *BadgerStore) Close() error {
	if bs.db != nil {
		return bs.db.Close()
	}
	return nil
}

func encodeBadgerValue(value []byte, version int, timestamp int64) []byte {
	buf := make([]byte, badgerHeaderSize+len(value))
	binary.BigEndian.PutUint32(buf[0:4], uint32(version))
	binary.BigEndian.PutUint64(buf[4:badgerHeaderSize], uint64(timestamp))
	copy(buf[badgerHeaderSize:], value)
	return buf
}

func decodeBadgerValue(raw []byte) ([]byte, int, int64, error) {
	if len(raw) < badgerHeaderSize {
		return nil, 0, 0, fmt.Errorf("corrupt badger value: %d bytes", len(raw))
	}
	version := int(binary.BigEndian.Uint32(raw[0:4]))
	ts := int64(binary.BigEndian.Uint64(raw[4:badgerHeaderSize]))
	return raw[badgerHeaderSize:], version, ts, nil
}
