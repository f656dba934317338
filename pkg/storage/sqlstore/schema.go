package sqlstore

// schema is valid for both SQLite and PostgreSQL.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id BIGINT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		download_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS document_languages (
		document_id BIGINT NOT NULL,
		language TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (document_id, language)
	)`,
	`CREATE TABLE IF NOT EXISTS document_subjects (
		document_id BIGINT NOT NULL,
		subject_id BIGINT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (document_id, subject_id)
	)`,
	`CREATE TABLE IF NOT EXISTS document_authors (
		document_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (document_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS keywords (
		language TEXT NOT NULL,
		document_id BIGINT NOT NULL,
		token TEXT NOT NULL,
		occurrence INTEGER NOT NULL DEFAULT 0,
		tfidf DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (language, document_id, token)
	)`,
	`CREATE INDEX IF NOT EXISTS keywords_language_token ON keywords (language, token)`,
	`CREATE TABLE IF NOT EXISTS neighbors (
		document_id BIGINT NOT NULL,
		neighbor_id BIGINT NOT NULL,
		PRIMARY KEY (document_id, neighbor_id)
	)`,
}
