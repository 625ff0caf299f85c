// Package peerdir persists a directory of peer node metadata — node id,
// protocol version, advertised capabilities, and last-seen time — learned
// from HELLO and CAPS frames exchanged on peer links. It is topology
// bookkeeping, not spot history: spec.md's prohibition on persistent spot
// storage does not apply here, and this package never stores a spot.Spot.
package peerdir

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"dxnode/ids"
)

// Entry is one row of the directory: what is currently known about a peer.
type Entry struct {
	NodeID       ids.NodeId
	Version      string
	Capabilities []string
	LastSeen     time.Time
}

// Directory is a sqlite-backed store of Entry rows, keyed by NodeID. Writes
// are synchronous upserts: HELLO/CAPS frames arrive far too rarely (one
// handshake and the occasional heartbeat-driven refresh per peer) to need
// a batched write queue.
type Directory struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Directory, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("peerdir: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("peerdir: open %s: %w", path, err)
	}
	if _, err := db.Exec(`pragma journal_mode=WAL; pragma synchronous=NORMAL; pragma busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("peerdir: pragma: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Directory{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	const schema = `
	create table if not exists peers (
		node_id text primary key,
		version text not null default '',
		capabilities text not null default '',
		last_seen integer not null default 0
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying database handle.
func (d *Directory) Close() error {
	if d == nil {
		return nil
	}
	return d.db.Close()
}

// Observe upserts what is known about a peer: its advertised version and
// capabilities, and the instant it was observed. Capabilities are stored
// joined by commas; a version or capability set carried by a later frame
// (e.g. CAPS following an earlier HELLO) overwrites only the fields it
// supplies a non-empty value for.
func (d *Directory) Observe(nodeID ids.NodeId, version string, capabilities []string, at time.Time) error {
	if d == nil || nodeID == "" {
		return nil
	}
	caps := strings.Join(capabilities, ",")
	_, err := d.db.Exec(`
		insert into peers(node_id, version, capabilities, last_seen) values(?, ?, ?, ?)
		on conflict(node_id) do update set
			version = case when excluded.version != '' then excluded.version else peers.version end,
			capabilities = case when excluded.capabilities != '' then excluded.capabilities else peers.capabilities end,
			last_seen = excluded.last_seen
	`, string(nodeID), version, caps, at.Unix())
	if err != nil {
		return fmt.Errorf("peerdir: observe %s: %w", nodeID, err)
	}
	return nil
}

// Get returns what the directory knows about nodeID, if anything.
func (d *Directory) Get(nodeID ids.NodeId) (Entry, bool, error) {
	row := d.db.QueryRow(`select node_id, version, capabilities, last_seen from peers where node_id = ?`, string(nodeID))
	var idText, version, caps string
	var lastSeen int64
	if err := row.Scan(&idText, &version, &caps, &lastSeen); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("peerdir: get %s: %w", nodeID, err)
	}
	return entryFromRow(idText, version, caps, lastSeen), true, nil
}

// All returns every peer the directory currently has a row for, ordered by
// most-recently-seen first.
func (d *Directory) All() ([]Entry, error) {
	rows, err := d.db.Query(`select node_id, version, capabilities, last_seen from peers order by last_seen desc`)
	if err != nil {
		return nil, fmt.Errorf("peerdir: all: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var idText, version, caps string
		var lastSeen int64
		if err := rows.Scan(&idText, &version, &caps, &lastSeen); err != nil {
			return nil, fmt.Errorf("peerdir: scan: %w", err)
		}
		out = append(out, entryFromRow(idText, version, caps, lastSeen))
	}
	return out, rows.Err()
}

// Prune deletes every entry not seen since before cutoff, returning the
// number of rows removed.
func (d *Directory) Prune(cutoff time.Time) (int64, error) {
	res, err := d.db.Exec(`delete from peers where last_seen < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("peerdir: prune: %w", err)
	}
	return res.RowsAffected()
}

func entryFromRow(idText, version, caps string, lastSeen int64) Entry {
	var capList []string
	if caps != "" {
		capList = strings.Split(caps, ",")
	}
	return Entry{
		NodeID:       ids.NodeId(idText),
		Version:      version,
		Capabilities: capList,
		LastSeen:     time.Unix(lastSeen, 0).UTC(),
	}
}
