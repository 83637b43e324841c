package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore persists messages in a Badger key-value database. Primary keys
// are "user:<userID>:msg:<id>" so a user's history is one prefix scan; an
// "idx:<id>" entry maps each message ID back to its primary key so deletes
// don't need the user ID.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (creating if needed) the Badger database at dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func userKey(userID, id string) []byte {
	return []byte(fmt.Sprintf("user:%s:msg:%s", userID, id))
}

func indexKey(id string) []byte {
	return []byte("idx:" + id)
}

func (s *BadgerStore) Append(_ context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("badger marshal: %w", err)
	}
	key := userKey(msg.UserID, msg.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(indexKey(msg.ID), key)
	})
	if err != nil {
		return fmt.Errorf("badger append: %w", err)
	}
	return nil
}

func (s *BadgerStore) QueryByUser(_ context.Context, userID string) ([]Message, error) {
	var out []Message
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(fmt.Sprintf("user:%s:msg:", userID))
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var m Message
				if err := json.Unmarshal(val, &m); err != nil {
					return err
				}
				out = append(out, m)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger query: %w", err)
	}
	return out, nil
}

func (s *BadgerStore) BatchDelete(_ context.Context, ids []string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get(indexKey(id))
			if err == badger.ErrKeyNotFound {
				continue // already gone, pruning is best-effort
			}
			if err != nil {
				return err
			}
			key, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
			if err := txn.Delete(indexKey(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger batch delete: %w", err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
