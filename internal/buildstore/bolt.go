package buildstore

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"sync"

	bolt "go.etcd.io/bbolt"
)

const boltBuildsBucket = "builds"

// BoltStore keeps records in a bbolt file, one key per build number.
type BoltStore struct {
	db    *bolt.DB
	codec codec
	once  sync.Once
}

// NewBoltStore opens (or creates) the store file at path. Diffs longer than
// compressThreshold bytes are stored compressed.
func NewBoltStore(path string, compressThreshold int) (*BoltStore, error) {
	if path == "" {
		return nil, errors.New("store path is required")
	}

	cleaned := filepath.Clean(path)
	if dir := filepath.Dir(cleaned); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := bolt.Open(cleaned, 0o600, nil)
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBuildsBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltStore{db: db, codec: newCodec(compressThreshold)}, nil
}

func buildKey(number int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(number))
	return key
}

// Save writes rec under its build number.
func (s *BoltStore) Save(ctx context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	data, err := s.codec.encode(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		b := tx.Bucket([]byte(boltBuildsBucket))
		if b == nil {
			return errors.New("builds bucket missing")
		}
		return b.Put(buildKey(rec.Number), data)
	})
}

// Get returns the record of build number.
func (s *BoltStore) Get(ctx context.Context, number int) (Record, error) {
	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		b := tx.Bucket([]byte(boltBuildsBucket))
		if b == nil {
			return ErrBuildNotFound
		}
		data := b.Get(buildKey(number))
		if data == nil {
			return ErrBuildNotFound
		}
		var err error
		rec, err = s.codec.decode(data)
		return err
	})
	return rec, err
}

// LastSuccessful walks the keys from the highest build number down.
func (s *BoltStore) LastSuccessful(ctx context.Context) (Record, error) {
	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(boltBuildsBucket))
		if b == nil {
			return ErrBuildNotFound
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := s.codec.decode(v)
			if err != nil {
				return err
			}
			if r.Result == Success {
				rec = r
				return nil
			}
		}
		return ErrBuildNotFound
	})
	return rec, err
}

// List returns all records in build number order.
func (s *BoltStore) List(ctx context.Context) ([]Record, error) {
	var out []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(boltBuildsBucket))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := s.codec.decode(v)
			if err != nil {
				return err
			}
			out = append(out, r)
			return nil
		})
	})
	return out, err
}

// Close shuts down the database.
func (s *BoltStore) Close() error {
	var err error
	s.once.Do(func() {
		err = s.db.Close()
	})
	return err
}
