// Package maskio keeps rasterized range masks in a key-value store.
package maskio

import (
	"log/slog"

	"github.com/gnames/gnfmt"
	"github.com/gnames/phenogrid/internal/ent/kv"
	"github.com/gnames/phenogrid/internal/ent/ranges"
)

type maskio struct {
	kv  kv.KeyVal
	enc gnfmt.Encoder
}

// New returns a ranges.Cache backed by an open key-value store.
func New(store kv.KeyVal) ranges.Cache {
	return &maskio{kv: store, enc: gnfmt.GNgob{}}
}

// Get returns occupied cells of a mask.
func (m *maskio) Get(key string) ([]int, bool, error) {
	bs, err := m.kv.GetValue([]byte(key))
	if err != nil {
		slog.Error("Cannot get mask from cache", "error", err, "key", key)
		return nil, false, err
	}
	if bs == nil {
		return nil, false, nil
	}
	var cells []int
	if err = m.enc.Decode(bs, &cells); err != nil {
		slog.Error("Cannot decode mask", "error", err, "key", key)
		return nil, false, err
	}
	return cells, true, nil
}

// Set saves occupied cells of a mask.
func (m *maskio) Set(key string, cells []int) error {
	if cells == nil {
		cells = []int{}
	}
	bs, err := m.enc.Encode(cells)
	if err != nil {
		slog.Error("Cannot encode mask", "error", err, "key", key)
		return err
	}
	return m.kv.SetValue([]byte(key), bs)
}
