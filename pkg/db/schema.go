package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Items: one row per committed record, keyed by URL, DOI or content hash
CREATE TABLE IF NOT EXISTS items (
    item_id INTEGER PRIMARY KEY AUTOINCREMENT,
    item_key TEXT NOT NULL UNIQUE,
    item_type TEXT NOT NULL,
    title TEXT,
    short_title TEXT,
    date TEXT,
    doi TEXT,
    issn TEXT,
    isbn TEXT,
    volume TEXT,
    issue TEXT,
    pages TEXT,
    edition TEXT,
    publication_title TEXT,
    publisher TEXT,
    place TEXT,
    series TEXT,
    url TEXT,
    abstract TEXT,
    language TEXT,
    library_catalog TEXT,
    extra TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_doi ON items(doi);
CREATE INDEX IF NOT EXISTS idx_items_type ON items(item_type);

-- Creators in credit order
CREATE TABLE IF NOT EXISTS item_creators (
    creator_id INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    first_name TEXT,
    last_name TEXT NOT NULL,
    creator_type TEXT NOT NULL,
    field_mode INTEGER DEFAULT 0,
    FOREIGN KEY (item_id) REFERENCES items(item_id) ON DELETE CASCADE,
    UNIQUE(item_id, position)
);

CREATE INDEX IF NOT EXISTS idx_creators_item ON item_creators(item_id);

-- Tags and notes share one table, told apart by kind
CREATE TABLE IF NOT EXISTS item_annotations (
    annotation_id INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id INTEGER NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('tag', 'note')),
    position INTEGER NOT NULL,
    value TEXT NOT NULL,
    FOREIGN KEY (item_id) REFERENCES items(item_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_annotations_item ON item_annotations(item_id);

-- Page and export fetches
CREATE TABLE IF NOT EXISTS url_accesses (
    access_id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT NOT NULL,
    accessed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    error_type TEXT,
    success BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accesses_url ON url_accesses(url);
`
