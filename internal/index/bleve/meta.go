package bleve

import (
	"encoding/json"
	"errors"
	"time"

	"go.etcd.io/bbolt"
)

const bucketBooks = "books"

// BookMeta records what was indexed for one book. VerseCount also bounds the
// ordinal doc ids to delete when the book is replaced.
type BookMeta struct {
	Hash       string `json:"hash"`
	VerseCount int    `json:"verse_count"`
	IndexedAt  int64  `json:"indexed_at"`
}

var errDecode = errors.New("decode failed")

func decode(data []byte, target any) error {
	if len(data) == 0 {
		return errDecode
	}
	return json.Unmarshal(data, target)
}

func encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func nowUnix() int64 {
	return time.Now().Unix()
}

func (s *Index) ensureBuckets() error {
	return s.meta.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketBooks))
		return err
	})
}

func mustBucket(tx *bbolt.Tx, name string) *bbolt.Bucket {
	b := tx.Bucket([]byte(name))
	if b == nil {
		b, _ = tx.CreateBucketIfNotExists([]byte(name))
	}
	return b
}

func (s *Index) bookMeta(book string) (BookMeta, bool, error) {
	var meta BookMeta
	var ok bool
	err := s.meta.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketBooks))
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(book))
		if raw == nil {
			return nil
		}
		ok = true
		return decode(raw, &meta)
	})
	return meta, ok, err
}

// Books returns the metadata of every indexed book.
func (s *Index) Books() (map[string]BookMeta, error) {
	if s == nil || s.meta == nil {
		return nil, errNotOpen
	}
	out := map[string]BookMeta{}
	err := s.meta.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketBooks))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var meta BookMeta
			if err := decode(v, &meta); err != nil {
				return err
			}
			out[string(k)] = meta
			return nil
		})
	})
	return out, err
}
