// Package redisstore is a core.RemoteStore backed by Redis.
// Each user collection is a hash of JSON documents; writes are announced on a pub/sub
// channel and subscribers reload the whole hash on every announcement.
package redisstore

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Abraham77967/Taskmate-Web/core"
)

var NowFunc = time.Now // mockable

type remoteStore struct {
	client *redis.Client
	prefix string
	logger core.Logger
}

var _ core.RemoteStore = (*remoteStore)(nil) // interface compliance check

// Open connects to Redis and checks the connection.
func Open(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "connecting to redis at %s", conf.Addr)
	}
	return client, nil
}

func NewRemoteStore(client *redis.Client, prefix string, logger core.Logger) core.RemoteStore {
	if prefix == "" {
		prefix = "taskmate"
	}
	return &remoteStore{client: client, prefix: prefix, logger: logger}
}

func (store *remoteStore) Subscribe(userID string, kind core.Kind, onSnapshot core.SnapshotFunc, onError core.ErrorFunc) core.Unsubscribe {
	ctx, cancel := context.WithCancel(context.Background())
	key := collectionKey(store.prefix, userID, kind)
	pubsub := store.client.Subscribe(ctx, changesChannel(key))

	fail := func(err error) {
		if ctx.Err() == nil && onError != nil {
			onError(err)
		}
	}

	go func() {
		// wait for the subscription to be confirmed so no change is missed between load and listen
		if _, err := pubsub.Receive(ctx); err != nil {
			fail(errors.Wrap(err, "subscribing"))
			return
		}
		ch := pubsub.Channel()

		if err := store.deliver(ctx, key, onSnapshot); err != nil {
			fail(err)
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					fail(errors.New("change channel closed"))
					return
				}
				if err := store.deliver(ctx, key, onSnapshot); err != nil {
					fail(err)
					return
				}
			}
		}
	}()

	return func() {
		cancel()
		_ = pubsub.Close()
	}
}

func (store *remoteStore) deliver(ctx context.Context, key string, onSnapshot core.SnapshotFunc) error {
	raw, err := store.client.HGetAll(ctx, key).Result()
	if err != nil {
		return errors.Wrapf(err, "loading %s", key)
	}
	docs, errs := decodeSnapshot(raw)
	for _, err := range errs {
		store.logger.Warn("skipping undecodable redis entry", err, map[string]interface{}{"key": key})
	}
	if ctx.Err() != nil {
		return nil
	}
	onSnapshot(docs)
	return nil
}

func (store *remoteStore) Create(ctx context.Context, userID string, kind core.Kind, fields core.Fields) (string, error) {
	now := NowFunc().UTC()
	doc := fields.Clone()
	doc[core.FieldCreatedAt] = now
	doc[core.FieldUpdatedAt] = now

	val, err := encodeFields(doc)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	key := collectionKey(store.prefix, userID, kind)
	if err := store.client.HSet(ctx, key, id, val).Err(); err != nil {
		return "", errors.Wrapf(err, "writing %s", key)
	}
	store.announce(ctx, key)
	return id, nil
}

func (store *remoteStore) Update(ctx context.Context, userID string, kind core.Kind, id string, fields core.Fields) error {
	key := collectionKey(store.prefix, userID, kind)

	err := store.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, id).Result()
		if err == redis.Nil {
			return core.ErrDocumentNotFound
		}
		if err != nil {
			return err
		}
		existing, err := decodeFields(raw)
		if err != nil {
			return err
		}
		val, err := encodeFields(mergeFields(existing, fields, NowFunc().UTC()))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, id, val)
			return nil
		})
		return err
	}, key)
	if err != nil {
		if errors.Is(err, core.ErrDocumentNotFound) {
			return core.ErrDocumentNotFound
		}
		return errors.Wrapf(err, "updating %s/%s", key, id)
	}
	store.announce(ctx, key)
	return nil
}

func (store *remoteStore) Delete(ctx context.Context, userID string, kind core.Kind, id string) error {
	key := collectionKey(store.prefix, userID, kind)
	n, err := store.client.HDel(ctx, key, id).Result()
	if err != nil {
		return errors.Wrapf(err, "deleting %s/%s", key, id)
	}
	if n > 0 {
		store.announce(ctx, key)
	}
	return nil
}

// announce tells subscribers key changed. The write already succeeded, so failures are only logged.
func (store *remoteStore) announce(ctx context.Context, key string) {
	if err := store.client.Publish(ctx, changesChannel(key), key).Err(); err != nil {
		store.logger.Error("announcing redis change failed", err, map[string]interface{}{"key": key})
	}
}
