package store

// Schema v1 - key-value table holding the serialized notebook state
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- One row per persisted key (projects, builder, selection)
CREATE TABLE IF NOT EXISTS kv (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Schema v2 - recency index for doctor and key listings
const schemaV2 = `
CREATE INDEX IF NOT EXISTS idx_kv_updated_at ON kv(updated_at);
`
