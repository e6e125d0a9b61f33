/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package tag

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/tid"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/web"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
)

const (
	driverSQLite   = "sqlite3"
	driverPostgres = "postgres"

	tagsTable   = "rfid_tags"
	eventsTable = "read_events"

	tagColumns = "tid, id, vendor, model_name, model_number, serial_hex, serial_decimal, monza_series_id, " +
		"is_impinj, is_nxp_ucode9, first_seen, last_seen, read_count, location, status"
	eventColumns = "id, tid, reader_id, location, signal_strength, antenna_id, read_at"
)

// schemas holds the DDL per driver. Both share the same columns, only the
// auto increment and timestamp types differ.
var schemas = map[string][]string{
	driverSQLite: {
		`CREATE TABLE IF NOT EXISTS rfid_tags (
			tid TEXT PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			vendor TEXT NOT NULL,
			model_name TEXT NOT NULL,
			model_number TEXT NOT NULL,
			serial_hex TEXT NOT NULL,
			serial_decimal INTEGER NOT NULL,
			monza_series_id INTEGER,
			is_impinj BOOLEAN NOT NULL,
			is_nxp_ucode9 BOOLEAN NOT NULL,
			first_seen TIMESTAMP NOT NULL,
			last_seen TIMESTAMP NOT NULL,
			read_count INTEGER NOT NULL DEFAULT 1,
			location TEXT,
			status TEXT NOT NULL DEFAULT 'active'
		)`,
		`CREATE TABLE IF NOT EXISTS read_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tid TEXT NOT NULL REFERENCES rfid_tags (tid) ON DELETE CASCADE,
			reader_id TEXT NOT NULL,
			location TEXT NOT NULL,
			signal_strength INTEGER,
			antenna_id INTEGER,
			read_at TIMESTAMP NOT NULL
		)`,
	},
	driverPostgres: {
		`CREATE TABLE IF NOT EXISTS rfid_tags (
			tid TEXT PRIMARY KEY,
			id UUID NOT NULL UNIQUE,
			vendor TEXT NOT NULL,
			model_name TEXT NOT NULL,
			model_number TEXT NOT NULL,
			serial_hex TEXT NOT NULL,
			serial_decimal BIGINT NOT NULL,
			monza_series_id INTEGER,
			is_impinj BOOLEAN NOT NULL,
			is_nxp_ucode9 BOOLEAN NOT NULL,
			first_seen TIMESTAMPTZ NOT NULL,
			last_seen TIMESTAMPTZ NOT NULL,
			read_count INTEGER NOT NULL DEFAULT 1,
			location TEXT,
			status TEXT NOT NULL DEFAULT 'active'
		)`,
		`CREATE TABLE IF NOT EXISTS read_events (
			id BIGSERIAL PRIMARY KEY,
			tid TEXT NOT NULL REFERENCES rfid_tags (tid) ON DELETE CASCADE,
			reader_id TEXT NOT NULL,
			location TEXT NOT NULL,
			signal_strength INTEGER,
			antenna_id INTEGER,
			read_at TIMESTAMPTZ NOT NULL
		)`,
	},
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_tags_vendor ON rfid_tags (vendor)",
	"CREATE INDEX IF NOT EXISTS idx_tags_model ON rfid_tags (model_name)",
	"CREATE INDEX IF NOT EXISTS idx_events_read_at ON read_events (read_at)",
	"CREATE INDEX IF NOT EXISTS idx_events_location ON read_events (location)",
}

// Store is the tag registry backed by sqlite3 or postgres
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Open connects to the registry database. driver is "sqlite3" or "postgres".
func Open(driver, dataSource string) (*Store, error) {
	db, err := sql.Open(driver, dataSource)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s database", driver)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "unable to connect to %s database", driver)
	}
	return NewStore(db, driver)
}

// NewStore wraps an open database
func NewStore(db *sql.DB, driver string) (*Store, error) {
	if db == nil {
		return nil, web.ErrDBNotConfigured
	}
	if _, ok := schemas[driver]; !ok {
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}
	if driver == driverSQLite {
		// sqlite allows a single writer; a shared connection also keeps
		// in-memory databases alive across calls
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, errors.Wrap(err, "unable to enable foreign keys")
		}
	}
	return &Store{db: db, driver: driver, now: time.Now}, nil
}

// Close closes the underlying database
func (store *Store) Close() error {
	return store.db.Close()
}

// Ping verifies the database connection is alive
func (store *Store) Ping(ctx context.Context) error {
	return store.db.PingContext(ctx)
}

// Prepare creates the tables and indexes
func (store *Store) Prepare(ctx context.Context) error {
	statements := append(append([]string{}, schemas[store.driver]...), indexes...)
	for _, statement := range statements {
		if _, err := store.db.ExecContext(ctx, statement); err != nil {
			return errors.Wrap(err, "error preparing tag registry")
		}
	}
	log.WithFields(log.Fields{
		"Method": "tag.Prepare",
		"Driver": store.driver,
	}).Debug("Tag registry ready")
	return nil
}

// RegisterReading decodes the reading's TID and records it. A new tag is
// inserted on its first reading; afterwards its read count, last seen time and
// location are updated. Every reading is also stored as a ReadEvent.
// Malformed TIDs are rejected with the tid package errors before touching the
// database.
//
//nolint:gocyclo
func (store *Store) RegisterReading(ctx context.Context, reading Reading) (Tag, error) {

	// Metrics
	metrics.GetOrRegisterGauge("TID.RegisterReading.Attempt", nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge("TID.RegisterReading.Success", nil)
	mInputErr := metrics.GetOrRegisterGauge("TID.RegisterReading.Input-Error", nil)
	mUpsertErr := metrics.GetOrRegisterGauge("TID.RegisterReading.Upsert-Error", nil)
	mLatency := metrics.GetOrRegisterTimer("TID.RegisterReading.Latency", nil)

	startTime := time.Now()
	defer func() { mLatency.Update(time.Since(startTime)) }()

	descriptor, err := tid.Parse(reading.TID)
	if err != nil {
		mInputErr.Update(1)
		return Tag{}, err
	}
	if strings.TrimSpace(reading.ReaderID) == "" {
		mInputErr.Update(1)
		return Tag{}, errors.Wrap(web.ErrInvalidInput, "reader_id cannot be empty")
	}
	if strings.TrimSpace(reading.Location) == "" {
		mInputErr.Update(1)
		return Tag{}, errors.Wrap(web.ErrInvalidInput, "location cannot be empty")
	}

	seen := reading.Timestamp
	if seen.IsZero() {
		seen = store.now()
	}
	seen = seen.UTC().Truncate(time.Microsecond)

	candidate := newTag(descriptor, reading.Location, seen)

	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		mUpsertErr.Update(1)
		return Tag{}, errors.Wrap(err, "unable to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, store.rebind(`INSERT INTO rfid_tags (`+tagColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tid) DO UPDATE SET
			read_count = rfid_tags.read_count + 1,
			last_seen = excluded.last_seen,
			location = excluded.location`),
		candidate.TID, candidate.ID.String(), candidate.Vendor, candidate.ModelName, candidate.ModelNumber,
		candidate.SerialHex, int64(candidate.SerialDecimal), nullableInt(candidate.MonzaSeriesID),
		candidate.IsImpinj, candidate.IsNXPUcode9, candidate.FirstSeen, candidate.LastSeen,
		candidate.ReadCount, candidate.Location, candidate.Status)
	if err != nil {
		mUpsertErr.Update(1)
		return Tag{}, errors.Wrapf(err, "unable to upsert tag %s", candidate.TID)
	}

	_, err = tx.ExecContext(ctx, store.rebind(`INSERT INTO read_events
		(tid, reader_id, location, signal_strength, antenna_id, read_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		candidate.TID, reading.ReaderID, reading.Location,
		nullableInt(reading.SignalStrength), nullableInt(reading.AntennaID), seen)
	if err != nil {
		mUpsertErr.Update(1)
		return Tag{}, errors.Wrapf(err, "unable to insert read event of %s", candidate.TID)
	}

	var tag Tag
	tag, err = scanTag(tx.QueryRowContext(ctx,
		store.rebind("SELECT "+tagColumns+" FROM rfid_tags WHERE tid = ?"), candidate.TID))
	if err != nil {
		mUpsertErr.Update(1)
		return Tag{}, errors.Wrapf(err, "unable to read back tag %s", candidate.TID)
	}

	if err = tx.Commit(); err != nil {
		mUpsertErr.Update(1)
		return Tag{}, errors.Wrap(err, "unable to commit reading")
	}

	mSuccess.Update(1)
	return tag, nil
}

// FindByTid returns the registry record of the TID, web.ErrNotFound if there is none
func (store *Store) FindByTid(ctx context.Context, text string) (Tag, error) {
	raw, err := tid.Normalize(text)
	if err != nil {
		return Tag{}, err
	}

	tag, err := scanTag(store.db.QueryRowContext(ctx,
		store.rebind("SELECT "+tagColumns+" FROM rfid_tags WHERE tid = ?"), raw.Hex()))
	if err == sql.ErrNoRows {
		return Tag{}, errors.Wrapf(web.ErrNotFound, "tag %s", raw.Hex())
	}
	if err != nil {
		return Tag{}, errors.Wrapf(err, "unable to find tag %s", raw.Hex())
	}
	return tag, nil
}

// List returns the tags matching the filter ordered by TID
func (store *Store) List(ctx context.Context, filter Filter) ([]Tag, error) {
	var conditions []string
	var args []interface{}

	if filter.Vendor != "" {
		conditions = append(conditions, `LOWER(vendor) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filter.Vendor))
	}
	if filter.Model != "" {
		conditions = append(conditions, `LOWER(model_name) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filter.Model))
	}
	if filter.Location != "" {
		conditions = append(conditions, "location = ?")
		args = append(args, filter.Location)
	}

	query := "SELECT " + tagColumns + " FROM rfid_tags"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY tid"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := store.db.QueryContext(ctx, store.rebind(query), args...)
	if err != nil {
		return nil, errors.Wrap(err, "error retrieving tags")
	}
	defer rows.Close()

	tags := make([]Tag, 0)
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error scanning tag")
		}
		tags = append(tags, tag)
	}
	return tags, errors.Wrap(rows.Err(), "error iterating tags")
}

// RecentEvents returns the read events at or after since, newest first
func (store *Store) RecentEvents(ctx context.Context, since time.Time) ([]ReadEvent, error) {
	rows, err := store.db.QueryContext(ctx,
		store.rebind("SELECT "+eventColumns+" FROM read_events WHERE read_at >= ? ORDER BY read_at DESC, id DESC"),
		since.UTC())
	if err != nil {
		return nil, errors.Wrap(err, "error retrieving read events")
	}
	defer rows.Close()

	events := make([]ReadEvent, 0)
	for rows.Next() {
		var event ReadEvent
		var signal, antenna sql.NullInt64
		if err := rows.Scan(&event.ID, &event.TID, &event.ReaderID, &event.Location,
			&signal, &antenna, &event.Timestamp); err != nil {
			return nil, errors.Wrap(err, "error scanning read event")
		}
		event.SignalStrength = intPointer(signal)
		event.AntennaID = intPointer(antenna)
		events = append(events, event)
	}
	return events, errors.Wrap(rows.Err(), "error iterating read events")
}

// Report summarizes the registry
func (store *Store) Report(ctx context.Context) (Report, error) {
	report := Report{Timestamp: store.now().UTC()}

	if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rfid_tags").
		Scan(&report.Summary.TotalTags); err != nil {
		return Report{}, errors.Wrap(err, "error counting tags")
	}
	if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM read_events").
		Scan(&report.Summary.TotalReadings); err != nil {
		return Report{}, errors.Wrap(err, "error counting read events")
	}

	var err error
	if report.VendorDistribution, err = store.distribution(ctx, "vendor"); err != nil {
		return Report{}, err
	}
	if report.ModelDistribution, err = store.distribution(ctx, "model_name"); err != nil {
		return Report{}, err
	}
	if report.LocationDistribution, err = store.distribution(ctx, "location"); err != nil {
		return Report{}, err
	}
	report.Summary.UniqueVendors = len(report.VendorDistribution)
	report.Summary.UniqueModels = len(report.ModelDistribution)
	report.Summary.UniqueLocations = len(report.LocationDistribution)

	rows, err := store.db.QueryContext(ctx, store.rebind(
		"SELECT tid, model_name, read_count, location FROM rfid_tags ORDER BY read_count DESC, tid LIMIT ?"),
		TopReadTags)
	if err != nil {
		return Report{}, errors.Wrap(err, "error retrieving top read tags")
	}
	defer rows.Close()

	report.TopReadTags = make([]TopTag, 0, TopReadTags)
	for rows.Next() {
		var top TopTag
		var location sql.NullString
		if err := rows.Scan(&top.TID, &top.Model, &top.ReadCount, &location); err != nil {
			return Report{}, errors.Wrap(err, "error scanning top read tag")
		}
		top.Location = location.String
		report.TopReadTags = append(report.TopReadTags, top)
	}
	return report, errors.Wrap(rows.Err(), "error iterating top read tags")
}

// Delete removes the tag and its read events
func (store *Store) Delete(ctx context.Context, text string) error {
	raw, err := tid.Normalize(text)
	if err != nil {
		return err
	}

	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "unable to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, store.rebind("DELETE FROM read_events WHERE tid = ?"), raw.Hex()); err != nil {
		return errors.Wrapf(err, "unable to delete read events of %s", raw.Hex())
	}
	result, err := tx.ExecContext(ctx, store.rebind("DELETE FROM rfid_tags WHERE tid = ?"), raw.Hex())
	if err != nil {
		return errors.Wrapf(err, "unable to delete tag %s", raw.Hex())
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "unable to count deleted tags")
	}
	if affected == 0 {
		return errors.Wrapf(web.ErrNotFound, "tag %s", raw.Hex())
	}
	return errors.Wrap(tx.Commit(), "unable to commit delete")
}

// distribution counts tags grouped by column; null and empty values are skipped
func (store *Store) distribution(ctx context.Context, column string) (map[string]int, error) {
	rows, err := store.db.QueryContext(ctx, "SELECT "+column+", COUNT(*) FROM rfid_tags WHERE "+
		column+" IS NOT NULL AND "+column+" <> '' GROUP BY "+column)
	if err != nil {
		return nil, errors.Wrapf(err, "error grouping tags by %s", column)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, errors.Wrapf(err, "error scanning %s distribution", column)
		}
		counts[key] = count
	}
	return counts, errors.Wrapf(rows.Err(), "error iterating %s distribution", column)
}

// rebind converts ? placeholders into the $n form postgres expects
func (store *Store) rebind(query string) string {
	if store.driver != driverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTag(row scanner) (Tag, error) {
	var tag Tag
	var id string
	var serial int64
	var seriesID sql.NullInt64
	var location sql.NullString

	err := row.Scan(&tag.TID, &id, &tag.Vendor, &tag.ModelName, &tag.ModelNumber, &tag.SerialHex,
		&serial, &seriesID, &tag.IsImpinj, &tag.IsNXPUcode9, &tag.FirstSeen, &tag.LastSeen,
		&tag.ReadCount, &location, &tag.Status)
	if err != nil {
		return Tag{}, err
	}

	if tag.ID, err = uuid.Parse(id); err != nil {
		return Tag{}, errors.Wrapf(err, "invalid id of tag %s", tag.TID)
	}
	tag.SerialDecimal = uint64(serial)
	tag.MonzaSeriesID = intPointer(seriesID)
	tag.Location = location.String
	return tag, nil
}

func likePattern(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(strings.ToLower(value))
	return "%" + escaped + "%"
}

func nullableInt(value *int) interface{} {
	if value == nil {
		return nil
	}
	return int64(*value)
}

func intPointer(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int64)
	return &v
}
