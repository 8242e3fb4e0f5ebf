package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akindayo/vendora/backend/internal/storage"
)

const kvRatesKey = "currency:rates"

// KVStore persists the snapshot as a JSON blob under a fixed key in the
// durable store, so the cache survives restarts the way the app's local
// storage blob did.
type KVStore struct {
	store storage.Store
}

func NewKVStore(store storage.Store) *KVStore {
	return &KVStore{store: store}
}

func (k *KVStore) Load(ctx context.Context) (Snapshot, bool, error) {
	data, err := k.store.GetKV(ctx, kvRatesKey)
	if errors.Is(err, storage.ErrNotFound) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("rates kv get: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("rates kv unmarshal: %w", err)
	}
	return snap, true, nil
}

func (k *KVStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("rates kv marshal: %w", err)
	}
	return k.store.PutKV(ctx, kvRatesKey, data)
}
