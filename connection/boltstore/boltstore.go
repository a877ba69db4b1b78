// Package boltstore is a reference connection.Connection backed by
// go.etcd.io/bbolt: each interaction's pending-inbound bag lives in its
// own bucket, keyed by a random id per message. It exists to give the
// connection.Connection interface one concrete, exercised implementation
// for tests; protocol/issuecredential never imports it.
package boltstore

import (
	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/lainio/err2"
	bolt "go.etcd.io/bbolt"

	"github.com/anoncreds-network/issuecredential/didcomm"
)

// Store wraps one bbolt database file. A single Store can back many
// Conns, one bucket per interaction.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the bbolt file at path.
func Open(path string) (store *Store, err error) {
	defer err2.Annotate("boltstore open", &err)

	db, openErr := bolt.Open(path, 0600, nil)
	if openErr != nil {
		return nil, openErr
	}
	return &Store{db: db}, nil
}

// Close releases the underlying bbolt file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Conn returns a connection.Connection over bucket, creating it if
// necessary.
func (s *Store) Conn(bucket string) (conn *Conn, err error) {
	defer err2.Annotate("boltstore conn", &err)

	updateErr := s.db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists([]byte(bucket))
		return createErr
	})
	if updateErr != nil {
		return nil, updateErr
	}
	return &Conn{store: s, bucket: bucket}, nil
}

// Conn is one interaction's pending-inbound bag. Peer, when set, is the
// counterpart's Conn: SendMessageClosure delivers outbound messages
// straight into Peer's bucket, standing in for a real transport in tests.
type Conn struct {
	store *Store
	Peer  *Conn

	bucket string
}

// Messages implements connection.Connection.
func (c *Conn) Messages() (msgs map[string]didcomm.Message, err error) {
	defer err2.Annotate("boltstore messages", &err)

	msgs = map[string]didcomm.Message{}
	viewErr := c.store.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(c.bucket))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			msg, unmarshalErr := didcomm.Unmarshal(v)
			if unmarshalErr != nil {
				return unmarshalErr
			}
			msgs[string(k)] = msg
			return nil
		})
	})
	if viewErr != nil {
		return nil, viewErr
	}
	return msgs, nil
}

// MarkRead implements connection.Connection.
func (c *Conn) MarkRead(key string) (err error) {
	defer err2.Annotate("boltstore mark read", &err)

	return c.store.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(c.bucket))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// SendMessageClosure implements connection.Connection. With no Peer set
// the closure is a sink that drops the message, matching a lone
// interaction with nowhere to deliver outbound traffic in a test.
func (c *Conn) SendMessageClosure() (func(didcomm.Message) error, error) {
	if c.Peer == nil {
		return func(didcomm.Message) error {
			glog.V(3).Info("boltstore: send with no peer configured, dropping message")
			return nil
		}, nil
	}
	peer := c.Peer
	return peer.deliver, nil
}

func (c *Conn) deliver(msg didcomm.Message) (err error) {
	defer err2.Annotate("boltstore deliver", &err)

	raw, marshalErr := didcomm.Marshal(msg)
	if marshalErr != nil {
		return marshalErr
	}

	return c.store.db.Update(func(tx *bolt.Tx) error {
		b, createErr := tx.CreateBucketIfNotExists([]byte(c.bucket))
		if createErr != nil {
			return createErr
		}
		return b.Put([]byte(uuid.New().String()), raw)
	})
}
