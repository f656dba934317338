package sqlstore

import (
	"context"
	"sort"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/storage"
)

// PutKeywords replaces the occurrence profile of one document.
func (s *Store) PutKeywords(ctx context.Context, lang string, id int64, profile document.OccurrenceProfile) error {
	tokens := profile.Tokens()

	err := s.inTx(ctx, func(tx dialect.Tx) error {
		del := s.b.Delete(tableKeywords).Where(entsql.And(
			entsql.EQ("language", lang),
			entsql.EQ("document_id", id),
		))
		if err := s.exec(ctx, tx, del); err != nil {
			return err
		}

		for _, batch := range chunks(tokens, chunkSize/5) {
			insert := s.b.Insert(tableKeywords).Columns("language", "document_id", "token", "occurrence", "tfidf")
			for _, token := range batch {
				insert.Values(lang, id, token, profile[token], 0.0)
			}
			if err := s.exec(ctx, tx, insert); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storage.Unavailable("put keywords", err)
	}
	return nil
}

// OccurrenceProfiles returns every document's occurrence profile for lang.
func (s *Store) OccurrenceProfiles(ctx context.Context, lang string) (map[int64]document.OccurrenceProfile, error) {
	out := make(map[int64]document.OccurrenceProfile)

	err := s.query(ctx,
		s.b.Select("document_id", "token", "occurrence").
			From(s.b.Table(tableKeywords)).
			Where(entsql.EQ("language", lang)),
		func(rows *entsql.Rows) error {
			var (
				id    int64
				token string
				n     int
			)
			if err := rows.Scan(&id, &token, &n); err != nil {
				return err
			}
			p, ok := out[id]
			if !ok {
				p = make(document.OccurrenceProfile)
				out[id] = p
			}
			p[token] = n
			return nil
		})
	if err != nil {
		return nil, storage.Unavailable("occurrence profiles", err)
	}
	return out, nil
}

// SetTFIDF stores TF-IDF scores for the listed documents. Only tokens
// already present in a document's occurrence profile are updated.
func (s *Store) SetTFIDF(ctx context.Context, lang string, scores map[int64]document.TFIDFProfile) error {
	ids := make([]int64, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	err := s.inTx(ctx, func(tx dialect.Tx) error {
		for _, id := range ids {
			reset := s.b.Update(tableKeywords).
				Set("tfidf", 0.0).
				Where(entsql.And(
					entsql.EQ("language", lang),
					entsql.EQ("document_id", id),
				))
			if err := s.exec(ctx, tx, reset); err != nil {
				return err
			}

			profile := scores[id]
			for _, token := range profile.Tokens() {
				update := s.b.Update(tableKeywords).
					Set("tfidf", profile[token]).
					Where(entsql.And(
						entsql.EQ("language", lang),
						entsql.EQ("document_id", id),
						entsql.EQ("token", token),
					))
				if err := s.exec(ctx, tx, update); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return storage.Unavailable("set tfidf", err)
	}
	return nil
}

// MatchTokens returns the distinct matching tokens of lang, sorted.
func (s *Store) MatchTokens(ctx context.Context, lang, query string, mode storage.MatchMode) ([]string, error) {
	if _, err := storage.Matcher(query, mode); err != nil {
		return nil, err
	}

	t := s.b.Table(tableKeywords)
	sel := s.b.Select(t.C("token")).
		Distinct().
		From(t).
		Where(entsql.And(
			entsql.EQ(t.C("language"), lang),
			s.match(t.C("token"), query, mode),
		)).
		OrderBy(t.C("token"))

	out := make([]string, 0)
	err := s.query(ctx, sel, func(rows *entsql.Rows) error {
		var token string
		if err := rows.Scan(&token); err != nil {
			return err
		}
		out = append(out, token)
		return nil
	})
	if err != nil {
		return nil, storage.Unavailable("match tokens", err)
	}
	return out, nil
}

// TFIDFProfiles returns the complete TF-IDF profiles of ids.
func (s *Store) TFIDFProfiles(ctx context.Context, lang string, ids []int64) (map[int64]document.TFIDFProfile, error) {
	out := make(map[int64]document.TFIDFProfile, len(ids))

	for _, batch := range chunks(dedupe(ids), chunkSize) {
		err := s.query(ctx,
			s.b.Select("document_id", "token", "tfidf").
				From(s.b.Table(tableKeywords)).
				Where(entsql.And(
					entsql.EQ("language", lang),
					entsql.In("document_id", anys(batch)...),
				)),
			scanScores(out))
		if err != nil {
			return nil, storage.Unavailable("tfidf profiles", err)
		}
	}
	return out, nil
}

// TokenScores returns the TF-IDF scores of tokens per holding document.
func (s *Store) TokenScores(ctx context.Context, lang string, tokens []string) (map[int64]document.TFIDFProfile, error) {
	out := make(map[int64]document.TFIDFProfile)

	for _, batch := range chunks(dedupe(tokens), chunkSize) {
		err := s.query(ctx,
			s.b.Select("document_id", "token", "tfidf").
				From(s.b.Table(tableKeywords)).
				Where(entsql.And(
					entsql.EQ("language", lang),
					entsql.In("token", anys(batch)...),
				)),
			scanScores(out))
		if err != nil {
			return nil, storage.Unavailable("token scores", err)
		}
	}
	return out, nil
}

// scanScores collects document_id, token, tfidf rows into out.
func scanScores(out map[int64]document.TFIDFProfile) func(*entsql.Rows) error {
	return func(rows *entsql.Rows) error {
		var (
			id    int64
			token string
			score float64
		)
		if err := rows.Scan(&id, &token, &score); err != nil {
			return err
		}
		p, ok := out[id]
		if !ok {
			p = make(document.TFIDFProfile)
			out[id] = p
		}
		p[token] = score
		return nil
	}
}
