package sqlstore

import (
	"context"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/folio/pkg/storage"
)

// AddNeighbors records symmetric neighbor pairs. Existing pairs are kept.
func (s *Store) AddNeighbors(ctx context.Context, id int64, neighbors []int64) error {
	others := make([]int64, 0, len(neighbors))
	for _, n := range dedupe(neighbors) {
		if n != id {
			others = append(others, n)
		}
	}
	if len(others) == 0 {
		return nil
	}

	err := s.inTx(ctx, func(tx dialect.Tx) error {
		for _, batch := range chunks(others, chunkSize/4) {
			insert := s.b.Insert(tableNeighbors).Columns("document_id", "neighbor_id")
			for _, n := range batch {
				insert.Values(id, n)
				insert.Values(n, id)
			}
			insert.OnConflict(
				entsql.ConflictColumns("document_id", "neighbor_id"),
				entsql.DoNothing(),
			)
			if err := s.exec(ctx, tx, insert); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storage.Unavailable("add neighbors", err)
	}
	return nil
}

// Neighbors returns the neighbors of id sorted ascending.
func (s *Store) Neighbors(ctx context.Context, id int64) ([]int64, error) {
	out := make([]int64, 0)
	err := s.query(ctx,
		s.b.Select("neighbor_id").
			From(s.b.Table(tableNeighbors)).
			Where(entsql.EQ("document_id", id)).
			OrderBy("neighbor_id"),
		func(rows *entsql.Rows) error {
			var n int64
			if err := rows.Scan(&n); err != nil {
				return err
			}
			out = append(out, n)
			return nil
		})
	if err != nil {
		return nil, storage.Unavailable("neighbors", err)
	}
	return out, nil
}

// ClearNeighbors removes every recorded pair.
func (s *Store) ClearNeighbors(ctx context.Context) error {
	if err := s.exec(ctx, s.drv, s.b.Delete(tableNeighbors)); err != nil {
		return storage.Unavailable("clear neighbors", err)
	}
	return nil
}
