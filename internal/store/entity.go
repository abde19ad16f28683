package store

import (
	"context"
	"encoding/binary"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// getJSON loads the value at key into a new T.
// Returns ErrNotFound if the key does not exist.
func getJSON[T any](txn *badger.Txn, key []byte) (*T, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, translate(err)
	}
	var v T
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &v)
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return &v, nil
}

// setJSON stores v at key.
func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set(key, data)
}

// exists checks if a key exists.
func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// scanJSON decodes every value under prefix in key order, or in reverse key
// order when reverse is set. A positive limit stops the scan early.
//
// The iterator is closed before scanJSON returns, so callers may issue further
// reads and writes on the same transaction with the results.
func scanJSON[T any](ctx context.Context, txn *badger.Txn, prefix []byte, reverse bool, limit int) ([]*T, error) {
	var out []*T
	err := scanKeys(ctx, txn, prefix, reverse, func(item *badger.Item) (bool, error) {
		var v T
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		}); err != nil {
			return false, fmt.Errorf("unmarshal %s: %w", item.Key(), err)
		}
		out = append(out, &v)
		return limit <= 0 || len(out) < limit, nil
	})
	return out, err
}

// scanKeys walks the items under prefix. fn returns false to stop early.
func scanKeys(ctx context.Context, txn *badger.Txn, prefix []byte, reverse bool, fn func(item *badger.Item) (bool, error)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.Reverse = reverse
	it := txn.NewIterator(opts)
	defer it.Close()

	seek := prefix
	if reverse {
		seek = append(append([]byte{}, prefix...), 0xFF)
	}
	for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		more, err := fn(it.Item())
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

// collectKeys returns copies of every key under prefix.
func collectKeys(ctx context.Context, txn *badger.Txn, prefix []byte) ([][]byte, error) {
	var keys [][]byte
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys, nil
}

// nextSequence increments the counter stored at key and returns the new value.
// The counter lives inside the transaction, so concurrent writers conflict
// instead of handing out the same value.
func nextSequence(txn *badger.Txn, key []byte) (uint64, error) {
	var cur uint64
	item, err := txn.Get(key)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		if err := item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence %s", key)
			}
			cur = binary.BigEndian.Uint64(val)
			return nil
		}); err != nil {
			return 0, err
		}
	}

	next := cur + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := txn.Set(key, buf); err != nil {
		return 0, err
	}
	return next, nil
}
