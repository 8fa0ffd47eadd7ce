package engine

import (
	"fmt"

	"whirlpool/market"
	"whirlpool/storage"
)

// SnapshotMarket serializes a market's current Data record (accrual, rebase,
// reserve, cap and risk fields) for out-of-process storage, using the RLP codec in the storage package.
// Operators use this to back up and later replay a market's numeric state
// across process restarts.
func (e *Engine) SnapshotMarket(key market.Key) ([]byte, error) {
	data, err := e.Markets.Get(key)
	if err != nil {
		return nil, err
	}
	snap, err := storage.EncodeMarket(data)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("market snapshot",
		"market", string(key),
		"storage_key", fmt.Sprintf("%x", storage.StorageKey("market", key)),
		"bytes", len(snap),
	)
	return snap, nil
}

// RestoreMarket decodes a snapshot produced by SnapshotMarket and overwrites
// the corresponding market's Data record. The market must already be
// registered via CreateMarket, which is what fixes its liquidation
// parameters; those are not part of a snapshot and stay as they are.
func (e *Engine) RestoreMarket(snapshot []byte) error {
	data, err := storage.DecodeMarket(snapshot)
	if err != nil {
		return err
	}
	if err := e.Markets.Restore(data); err != nil {
		return err
	}
	e.logger.Info("market restored", "market", string(data.Key))
	return nil
}
