package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inovacc/bidmatch/internal/model"
	"go.etcd.io/bbolt"
)

const (
	boltBucketSession    = "session"    // key: "current" -> Session JSON
	boltBucketSelections = "selections" // key: name -> JSON value

	sessionKey = "current"
)

// Session is the stored session record.
type Session = model.Session

type Bolt struct {
	db *bbolt.DB
}

// NewBolt opens (or creates) the database at path.
func NewBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(boltBucketSession)); err != nil {
			return err
		}

		if _, err := tx.CreateBucketIfNotExists([]byte(boltBucketSelections)); err != nil {
			return err
		}

		return nil
	}); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Bolt{db: db}, nil
}

func (b *Bolt) Ping() error {
	return b.db.View(func(tx *bbolt.Tx) error {
		return nil
	})
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) GetSession() (*Session, error) {
	var s Session

	err := b.get(boltBucketSession, sessionKey, &s)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (b *Bolt) SaveSession(s *Session) error {
	if s == nil {
		return errors.New("session is required")
	}

	return b.put(boltBucketSession, sessionKey, s)
}

func (b *Bolt) ClearSession() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketSession)).Delete([]byte(sessionKey))
	})
}

func (b *Bolt) GetSelection(key string, out any) error {
	return b.get(boltBucketSelections, key, out)
}

func (b *Bolt) SaveSelection(key string, v any) error {
	if key == "" {
		return errors.New("selection key is required")
	}

	return b.put(boltBucketSelections, key, v)
}

func (b *Bolt) DeleteSelection(key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketSelections)).Delete([]byte(key))
	})
}

func (b *Bolt) get(bucket, key string, out any) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(bucket)).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}

		return json.Unmarshal(v, out)
	})
}

func (b *Bolt) put(bucket, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), data)
	})
}
