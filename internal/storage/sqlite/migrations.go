package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Songs must be created before the tables that reference them.
const schema = `
CREATE TABLE IF NOT EXISTS songs (
    id TEXT PRIMARY KEY,
    artist_id TEXT NOT NULL,
    title TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS split_entries (
    song_id TEXT NOT NULL,
    category TEXT NOT NULL CHECK (category IN ('music', 'lyrics', 'instrumental')),
    position INTEGER NOT NULL,
    contributor_id TEXT NOT NULL,
    name TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT '',
    pro_affiliation TEXT NOT NULL DEFAULT '',
    publisher TEXT NOT NULL DEFAULT '',
    percentage INTEGER NOT NULL CHECK (percentage BETWEEN 0 AND 100),
    PRIMARY KEY (song_id, category, position),
    FOREIGN KEY (song_id) REFERENCES songs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS conditional_splits (
    id TEXT PRIMARY KEY,
    song_id TEXT NOT NULL,
    category TEXT NOT NULL CHECK (category IN ('music', 'lyrics', 'instrumental')),
    condition_type TEXT NOT NULL CHECK (condition_type IN ('recoupment', 'time')),
    threshold TEXT NOT NULL,
    phase TEXT NOT NULL DEFAULT 'pre' CHECK (phase IN ('pre', 'post')),
    created_at INTEGER NOT NULL,
    resolved_at INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (song_id) REFERENCES songs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS conditional_entries (
    conditional_id TEXT NOT NULL,
    side TEXT NOT NULL CHECK (side IN ('pre', 'post')),
    position INTEGER NOT NULL,
    contributor_id TEXT NOT NULL,
    name TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT '',
    pro_affiliation TEXT NOT NULL DEFAULT '',
    publisher TEXT NOT NULL DEFAULT '',
    percentage INTEGER NOT NULL CHECK (percentage BETWEEN 0 AND 100),
    PRIMARY KEY (conditional_id, side, position),
    FOREIGN KEY (conditional_id) REFERENCES conditional_splits(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_songs_artist_id ON songs(artist_id);
CREATE INDEX IF NOT EXISTS idx_split_entries_song_id ON split_entries(song_id);
CREATE INDEX IF NOT EXISTS idx_conditional_splits_song_id ON conditional_splits(song_id);
CREATE INDEX IF NOT EXISTS idx_conditional_splits_phase ON conditional_splits(phase);
CREATE INDEX IF NOT EXISTS idx_conditional_entries_conditional_id ON conditional_entries(conditional_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
