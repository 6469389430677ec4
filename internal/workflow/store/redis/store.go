// Package redis keeps workflow snapshots in Redis hashes with a version guard.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"

	"willgate/internal/workflow/models"
	"willgate/pkg/domain"
	"willgate/pkg/platform/sentinel"
)

// saveScript writes the snapshot only when its version is newer and indexes
// the account. KEYS: snapshot hash, account index. ARGV: version, payload, account.
var saveScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'version')
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
  return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'payload', ARGV[2])
redis.call('SADD', KEYS[2], ARGV[3])
return 1
`)

type Store struct {
	client redis.UniversalClient
	prefix string
}

// New uses prefix for every key, e.g. "willgate:".
func New(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) snapshotKey(account domain.Address) string {
	return s.prefix + "snapshot:" + strings.ToLower(account.String())
}

func (s *Store) indexKey() string {
	return s.prefix + "snapshots"
}

func (s *Store) Save(ctx context.Context, snap models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	keys := []string{s.snapshotKey(snap.Account), s.indexKey()}
	if err := saveScript.Run(ctx, s.client, keys, snap.Version, payload, snap.Account.String()).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, account domain.Address) (models.Snapshot, error) {
	payload, err := s.client.HGet(ctx, s.snapshotKey(account), "payload").Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Snapshot{}, fmt.Errorf("snapshot %s: %w", account, sentinel.ErrNotFound)
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return decode(payload)
}

// List reads every indexed snapshot in one pipeline.
func (s *Store) List(ctx context.Context) ([]models.Snapshot, error) {
	members, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list snapshot index: %w", err)
	}
	slices.Sort(members)

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, 0, len(members))
	for _, m := range members {
		cmds = append(cmds, pipe.HGet(ctx, s.snapshotKey(domain.Address(m)), "payload"))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read snapshots: %w", err)
	}

	out := make([]models.Snapshot, 0, len(cmds))
	for _, cmd := range cmds {
		payload, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		snap, err := decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

func decode(payload []byte) (models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
