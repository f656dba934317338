package sqlstore

import (
	"context"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/folio/pkg/document"
	"github.com/papercomputeco/folio/pkg/storage"
)

// PutDocuments inserts or replaces documents by id, together with their
// languages, subjects and authors.
func (s *Store) PutDocuments(ctx context.Context, docs []document.Document) error {
	docs = lastByID(docs)
	if len(docs) == 0 {
		return nil
	}

	err := s.inTx(ctx, func(tx dialect.Tx) error {
		for _, batch := range chunks(docs, chunkSize/3) {
			insert := s.b.Insert(tableDocuments).Columns("id", "title", "download_count")
			ids := make([]any, len(batch))
			for i, doc := range batch {
				insert.Values(doc.ID, doc.Title, doc.DownloadCount)
				ids[i] = doc.ID
			}
			insert.OnConflict(
				entsql.ConflictColumns("id"),
				entsql.ResolveWithNewValues(),
			)
			if err := s.exec(ctx, tx, insert); err != nil {
				return err
			}

			for _, table := range []string{tableLanguages, tableSubjects, tableAuthors} {
				if err := s.exec(ctx, tx, s.b.Delete(table).Where(entsql.In("document_id", ids...))); err != nil {
					return err
				}
			}
		}

		for _, doc := range docs {
			if err := s.putAttributes(ctx, tx, doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storage.Unavailable("put documents", err)
	}
	return nil
}

func (s *Store) putAttributes(ctx context.Context, tx dialect.Tx, doc document.Document) error {
	if langs := dedupe(doc.Languages); len(langs) > 0 {
		insert := s.b.Insert(tableLanguages).Columns("document_id", "language", "position")
		for i, lang := range langs {
			insert.Values(doc.ID, lang, i)
		}
		if err := s.exec(ctx, tx, insert); err != nil {
			return err
		}
	}

	if subjects := dedupe(doc.Subjects); len(subjects) > 0 {
		insert := s.b.Insert(tableSubjects).Columns("document_id", "subject_id", "position")
		for i, subject := range subjects {
			insert.Values(doc.ID, subject, i)
		}
		if err := s.exec(ctx, tx, insert); err != nil {
			return err
		}
	}

	if len(doc.Authors) > 0 {
		insert := s.b.Insert(tableAuthors).Columns("document_id", "name", "position")
		for i, name := range doc.Authors {
			insert.Values(doc.ID, name, i)
		}
		if err := s.exec(ctx, tx, insert); err != nil {
			return err
		}
	}
	return nil
}

// GetDocument returns one document.
func (s *Store) GetDocument(ctx context.Context, id int64) (*document.Document, error) {
	found, err := s.loadDocuments(ctx, []int64{id})
	if err != nil {
		return nil, storage.Unavailable("get document", err)
	}
	doc, ok := found[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}
	return doc, nil
}

// GetDocuments returns known documents in input order.
func (s *Store) GetDocuments(ctx context.Context, ids []int64) ([]document.Document, error) {
	unique := dedupe(ids)

	found, err := s.loadDocuments(ctx, unique)
	if err != nil {
		return nil, storage.Unavailable("get documents", err)
	}

	out := make([]document.Document, 0, len(found))
	for _, id := range unique {
		if doc, ok := found[id]; ok {
			out = append(out, *doc)
		}
	}
	return out, nil
}

// ListDocuments returns the documents matching f.
func (s *Store) ListDocuments(ctx context.Context, f storage.Filter) ([]document.Document, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	docs := s.b.Table(tableDocuments)
	preds := []*entsql.Predicate{entsql.NEQ(docs.C("title"), "")}

	if f.Language != "" {
		t := s.b.Table(tableLanguages)
		preds = append(preds, entsql.Exists(
			s.b.Select(t.C("document_id")).From(t).Where(entsql.And(
				entsql.ColumnsEQ(t.C("document_id"), docs.C("id")),
				entsql.EQ(t.C("language"), f.Language),
			)),
		))
	}

	if f.Author != "" {
		t := s.b.Table(tableAuthors)
		preds = append(preds, entsql.Exists(
			s.b.Select(t.C("document_id")).From(t).Where(entsql.And(
				entsql.ColumnsEQ(t.C("document_id"), docs.C("id")),
				s.match(t.C("name"), f.Author, f.AuthorMode),
			)),
		))
	}

	if f.Title != "" {
		preds = append(preds, s.match(docs.C("title"), f.Title, f.TitleMode))
	}

	if f.Keyword != "" {
		t := s.b.Table(tableKeywords)
		preds = append(preds, entsql.Exists(
			s.b.Select(t.C("document_id")).From(t).Where(entsql.And(
				entsql.ColumnsEQ(t.C("document_id"), docs.C("id")),
				entsql.In(t.C("language"), anys(f.KeywordLanguages())...),
				s.match(t.C("token"), f.Keyword, f.KeywordMode),
			)),
		))
	}

	sel := s.b.Select(docs.C("id")).From(docs).Where(entsql.And(preds...))
	if f.SortByDownloads {
		if f.Ascending {
			sel.OrderBy(entsql.Asc(docs.C("download_count")))
		} else {
			sel.OrderBy(entsql.Desc(docs.C("download_count")))
		}
	}
	sel.OrderBy(entsql.Asc(docs.C("id")))

	var ids []int64
	err := s.query(ctx, sel, func(rows *entsql.Rows) error {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, storage.Unavailable("list documents", err)
	}

	found, err := s.loadDocuments(ctx, ids)
	if err != nil {
		return nil, storage.Unavailable("list documents", err)
	}

	out := make([]document.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, *found[id])
	}
	return out, nil
}

// match builds a contains or regular expression predicate on col.
func (s *Store) match(col, query string, mode storage.MatchMode) *entsql.Predicate {
	if mode == storage.MatchPattern {
		return entsql.P(func(b *entsql.Builder) {
			b.Ident(col).WriteString(" " + s.regexOp + " ").Arg(query)
		})
	}
	return entsql.ContainsFold(col, query)
}

// loadDocuments reads the documents with the given ids, keyed by id.
func (s *Store) loadDocuments(ctx context.Context, ids []int64) (map[int64]*document.Document, error) {
	out := make(map[int64]*document.Document, len(ids))

	for _, batch := range chunks(ids, chunkSize) {
		args := anys(batch)

		err := s.query(ctx,
			s.b.Select("id", "title", "download_count").
				From(s.b.Table(tableDocuments)).
				Where(entsql.In("id", args...)),
			func(rows *entsql.Rows) error {
				var doc document.Document
				if err := rows.Scan(&doc.ID, &doc.Title, &doc.DownloadCount); err != nil {
					return err
				}
				out[doc.ID] = &doc
				return nil
			})
		if err != nil {
			return nil, err
		}

		err = s.query(ctx,
			s.b.Select("document_id", "language").
				From(s.b.Table(tableLanguages)).
				Where(entsql.In("document_id", args...)).
				OrderBy("document_id", "position"),
			func(rows *entsql.Rows) error {
				var (
					id   int64
					lang string
				)
				if err := rows.Scan(&id, &lang); err != nil {
					return err
				}
				if doc, ok := out[id]; ok {
					doc.Languages = append(doc.Languages, lang)
				}
				return nil
			})
		if err != nil {
			return nil, err
		}

		err = s.query(ctx,
			s.b.Select("document_id", "subject_id").
				From(s.b.Table(tableSubjects)).
				Where(entsql.In("document_id", args...)).
				OrderBy("document_id", "position"),
			func(rows *entsql.Rows) error {
				var id, subject int64
				if err := rows.Scan(&id, &subject); err != nil {
					return err
				}
				if doc, ok := out[id]; ok {
					doc.Subjects = append(doc.Subjects, subject)
				}
				return nil
			})
		if err != nil {
			return nil, err
		}

		err = s.query(ctx,
			s.b.Select("document_id", "name").
				From(s.b.Table(tableAuthors)).
				Where(entsql.In("document_id", args...)).
				OrderBy("document_id", "position"),
			func(rows *entsql.Rows) error {
				var (
					id   int64
					name string
				)
				if err := rows.Scan(&id, &name); err != nil {
					return err
				}
				if doc, ok := out[id]; ok {
					doc.Authors = append(doc.Authors, name)
				}
				return nil
			})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// lastByID keeps the last occurrence of every id, in first-seen order.
func lastByID(docs []document.Document) []document.Document {
	pos := make(map[int64]int, len(docs))
	out := make([]document.Document, 0, len(docs))
	for _, doc := range docs {
		if i, ok := pos[doc.ID]; ok {
			out[i] = doc
			continue
		}
		pos[doc.ID] = len(out)
		out = append(out, doc)
	}
	return out
}

func dedupe[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, v := range items {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
